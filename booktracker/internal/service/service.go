package service

import (
	"context"

	"github.com/Astemirdum/booktracker/booktracker/internal/model"
	"github.com/Astemirdum/booktracker/booktracker/internal/service/books"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type BookService interface {
	ListAll(ctx context.Context) ([]model.Book, error)
	Get(ctx context.Context, id int64) (model.Book, error)
	Create(ctx context.Context, req model.BookRequest) (model.Book, error)
	Update(ctx context.Context, id int64, req model.BookRequest) (model.Book, error)
	Delete(ctx context.Context, id int64) error
}

var _ BookService = (*books.Service)(nil)
