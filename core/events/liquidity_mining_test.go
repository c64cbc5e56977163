package events

import (
	"strings"
	"testing"

	"github.com/holiman/uint256"
)

func TestRewardClaimedEvent(t *testing.T) {
	who := [20]byte{0xAA}
	evt := RewardClaimed{
		GlobalFarmID:   1,
		YieldFarmID:    2,
		Who:            who,
		Claimed:        uint256.NewInt(1_250),
		RewardCurrency: 0,
		DepositID:      7,
	}.Event()
	if evt.Type != TypeRewardClaimed {
		t.Fatalf("unexpected type: %s", evt.Type)
	}
	if evt.Attributes["claimed"] != "1250" || evt.Attributes["depositId"] != "7" {
		t.Fatalf("unexpected attrs: %+v", evt.Attributes)
	}
	if !strings.EqualFold(evt.Attributes["who"], "0xaa00000000000000000000000000000000000000") {
		t.Fatalf("unexpected who: %s", evt.Attributes["who"])
	}
}

func TestYieldFarmCreatedCarriesPair(t *testing.T) {
	evt := YieldFarmCreated{GlobalFarmID: 1, YieldFarmID: 2, Multiplier: "1", Pair: AssetPair{AssetIn: 3, AssetOut: 4}}.Event()
	if evt.Attributes["assetIn"] != "3" || evt.Attributes["assetOut"] != "4" {
		t.Fatalf("unexpected attrs: %+v", evt.Attributes)
	}
	if evt.Attributes["loyaltyCurve"] != "" {
		t.Fatalf("expected empty loyalty curve")
	}
}

func TestBufferFlushesInOrder(t *testing.T) {
	var buf Buffer
	buf.Emit(DepositDestroyed{DepositID: 1})
	buf.Emit(nil)
	buf.Emit(DepositDestroyed{DepositID: 2})
	if len(buf.Events()) != 2 {
		t.Fatalf("expected 2 buffered events")
	}
	var sink Buffer
	buf.FlushTo(Fanout{&sink, NoopEmitter{}})
	if len(buf.Events()) != 0 {
		t.Fatalf("expected empty buffer after flush")
	}
	got := sink.Events()
	if len(got) != 2 || got[1].(DepositDestroyed).DepositID != 2 {
		t.Fatalf("unexpected forwarded events: %+v", got)
	}
	if Payload(got[0]).Attributes["depositId"] != "1" {
		t.Fatalf("unexpected payload")
	}
}
