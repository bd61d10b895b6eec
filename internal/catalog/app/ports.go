package app

import (
	"context"

	"softhub/internal/catalog/domain"
)

type ProductRepo interface {
	GetByID(ctx context.Context, id int) (domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
}
