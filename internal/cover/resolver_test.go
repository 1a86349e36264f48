package cover_test

import (
	"context"
	"errors"
	"testing"

	"bookshelf/internal/cover"
	"bookshelf/internal/mocks"
	"bookshelf/internal/platform/openlibrary"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestResolver_Resolve_ByISBN(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	client := mocks.NewMockSearchClient(ctrl)
	r := cover.NewResolver(client, zap.NewNop())

	client.EXPECT().
		SearchByISBN(gomock.Any(), "9780141439518").
		Return(&openlibrary.SearchResponse{
			NumFound: 1,
			Docs:     []openlibrary.Doc{{Title: "Pride and Prejudice", CoverID: 9876}},
		}, nil)

	got := r.Resolve(context.Background(), "9780141439518", "Pride and Prejudice")
	assert.Equal(t, "https://covers.openlibrary.org/b/id/9876-M.jpg", got)
}

func TestResolver_Resolve_FallsBackToTitle(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	client := mocks.NewMockSearchClient(ctrl)
	r := cover.NewResolver(client, zap.NewNop())

	client.EXPECT().
		SearchByTitle(gomock.Any(), "Dune").
		Return(&openlibrary.SearchResponse{
			NumFound: 1,
			Docs:     []openlibrary.Doc{{Title: "Dune", CoverID: 42}},
		}, nil)

	got := r.Resolve(context.Background(), "   ", "Dune")
	assert.Equal(t, "https://covers.openlibrary.org/b/id/42-M.jpg", got)
}

func TestResolver_Resolve_DefaultsOnFailure(t *testing.T) {
	tests := []struct {
		name  string
		setup func(client *mocks.MockSearchClient)
	}{
		{
			name: "upstream error",
			setup: func(client *mocks.MockSearchClient) {
				client.EXPECT().
					SearchByISBN(gomock.Any(), gomock.Any()).
					Return(nil, errors.New("connection refused"))
			},
		},
		{
			name: "timeout",
			setup: func(client *mocks.MockSearchClient) {
				client.EXPECT().
					SearchByISBN(gomock.Any(), gomock.Any()).
					Return(nil, context.DeadlineExceeded)
			},
		},
		{
			name: "empty result set",
			setup: func(client *mocks.MockSearchClient) {
				client.EXPECT().
					SearchByISBN(gomock.Any(), gomock.Any()).
					Return(&openlibrary.SearchResponse{}, nil)
			},
		},
		{
			name: "first doc has no cover id",
			setup: func(client *mocks.MockSearchClient) {
				client.EXPECT().
					SearchByISBN(gomock.Any(), gomock.Any()).
					Return(&openlibrary.SearchResponse{
						NumFound: 1,
						Docs:     []openlibrary.Doc{{Title: "Obscure Book"}},
					}, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			client := mocks.NewMockSearchClient(ctrl)
			tt.setup(client)

			r := cover.NewResolver(client, zap.NewNop())
			got := r.Resolve(context.Background(), "9780141439518", "whatever")
			assert.Equal(t, cover.DefaultURL, got)
		})
	}
}
