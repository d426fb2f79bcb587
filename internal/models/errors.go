package models

import "errors"

var (
	ErrNotFound                = errors.New("not found")
	ErrInsufficientFunds       = errors.New("insufficient dust")
	ErrCardInDeck              = errors.New("card is in the deck")
	ErrInvalidSlot             = errors.New("invalid deck slot")
	ErrAlreadyInDeck           = errors.New("card already in the deck")
	ErrCatalogLookup           = errors.New("card id not in catalog")
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
	ErrSessionClosed           = errors.New("session closed")
	ErrAlreadyExists           = errors.New("already exists")
)
