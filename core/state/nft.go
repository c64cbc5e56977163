package state

import "errors"

var (
	ErrNFTClassExists   = errors.New("state: nft class already exists")
	ErrNFTClassNotFound = errors.New("state: nft class not found")
	ErrNFTExists        = errors.New("state: nft instance already minted")
	ErrNFTNotFound      = errors.New("state: nft instance not found")
)

type nftClass struct {
	Owner [20]byte
	Items uint64
}

type nftInstance struct {
	Owner [20]byte
}

// CreateNFTClass registers a collection owned by owner.
func (tx *Tx) CreateNFTClass(class uint64, owner [20]byte) error {
	exists, err := tx.getRLP(nftClassKey(class), nil)
	if err != nil {
		return err
	}
	if exists {
		return ErrNFTClassExists
	}
	return tx.putRLP(nftClassKey(class), &nftClass{Owner: owner})
}

// NFTClassExists reports whether the class has been created.
func (tx *Tx) NFTClassExists(class uint64) (bool, error) {
	return tx.getRLP(nftClassKey(class), nil)
}

// MintNFT issues instance of class to owner.
func (tx *Tx) MintNFT(class, instance uint64, owner [20]byte) error {
	meta := new(nftClass)
	ok, err := tx.getRLP(nftClassKey(class), meta)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNFTClassNotFound
	}
	if exists, err := tx.getRLP(nftInstanceKey(class, instance), nil); err != nil {
		return err
	} else if exists {
		return ErrNFTExists
	}
	meta.Items++
	if err := tx.putRLP(nftClassKey(class), meta); err != nil {
		return err
	}
	return tx.putRLP(nftInstanceKey(class, instance), &nftInstance{Owner: owner})
}

// BurnNFT destroys instance of class.
func (tx *Tx) BurnNFT(class, instance uint64) error {
	meta := new(nftClass)
	ok, err := tx.getRLP(nftClassKey(class), meta)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNFTClassNotFound
	}
	if exists, err := tx.getRLP(nftInstanceKey(class, instance), nil); err != nil {
		return err
	} else if !exists {
		return ErrNFTNotFound
	}
	if meta.Items > 0 {
		meta.Items--
	}
	if err := tx.putRLP(nftClassKey(class), meta); err != nil {
		return err
	}
	tx.ov.remove(nftInstanceKey(class, instance))
	return nil
}

// NFTOwner returns the owner of instance, if it exists.
func (tx *Tx) NFTOwner(class, instance uint64) ([20]byte, bool, error) {
	item := new(nftInstance)
	ok, err := tx.getRLP(nftInstanceKey(class, instance), item)
	if err != nil || !ok {
		return [20]byte{}, false, err
	}
	return item.Owner, true, nil
}

// TransferNFT hands instance over to a new owner.
func (tx *Tx) TransferNFT(class, instance uint64, to [20]byte) error {
	if _, ok, err := tx.NFTOwner(class, instance); err != nil {
		return err
	} else if !ok {
		return ErrNFTNotFound
	}
	return tx.putRLP(nftInstanceKey(class, instance), &nftInstance{Owner: to})
}
