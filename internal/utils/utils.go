package utils

import (
	"card-clicker/internal/models"
	"card-clicker/internal/utils/catalogdb"
)

type Utils struct {
	CatalogDB interface {
		LoadCardsFromFile(filename string) ([]models.CardTemplate, error)
	}
}

func New() *Utils {
	return &Utils{
		CatalogDB: catalogdb.New(),
	}
}
