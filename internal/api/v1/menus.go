package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/reactkit/internal/menu"
)

type ListMenusInput struct{}

type ListMenusOutput struct {
	Body []menu.Session
}

type GetMenuInput struct {
	ID uuid.UUID `path:"id" doc:"Menu session ID"`
}

type GetMenuOutput struct {
	Body menu.Session
}

func RegisterMenuRoutes(api huma.API, menus MenuLister) {
	huma.Register(api, huma.Operation{
		OperationID: "list-menus",
		Method:      http.MethodGet,
		Path:        "/menus",
		Summary:     "List running menus, oldest first",
		Tags:        []string{"Menus"},
	}, func(_ context.Context, _ *ListMenusInput) (*ListMenusOutput, error) {
		return &ListMenusOutput{Body: menus.List()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-menu",
		Method:      http.MethodGet,
		Path:        "/menus/{id}",
		Summary:     "Get a running menu by ID",
		Tags:        []string{"Menus"},
	}, func(_ context.Context, input *GetMenuInput) (*GetMenuOutput, error) {
		session, ok := menus.Get(input.ID)
		if !ok {
			return nil, huma.Error404NotFound("menu not found")
		}

		return &GetMenuOutput{Body: session}, nil
	})
}
