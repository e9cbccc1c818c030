package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

type StatusInput struct{}

type StatusBody struct {
	Platforms           []string `json:"platforms" doc:"Connected chat platforms"`
	ActiveMenus         int      `json:"active_menus" doc:"Menus currently waiting for input"`
	ReactionSubscribers int      `json:"reaction_subscribers" doc:"Open reaction waits"`
	MessageSubscribers  int      `json:"message_subscribers" doc:"Open message waits"`
}

type StatusOutput struct {
	Body StatusBody
}

func RegisterStatusRoutes(api huma.API, events SubscriberCounter, menus MenuLister, platforms PlatformLister) {
	huma.Register(api, huma.Operation{
		OperationID: "get-status",
		Method:      http.MethodGet,
		Path:        "/status",
		Summary:     "Report connected platforms and open waits",
		Tags:        []string{"Status"},
	}, func(_ context.Context, _ *StatusInput) (*StatusOutput, error) {
		reactions, messages := events.Subscribers()

		return &StatusOutput{Body: StatusBody{
			Platforms:           platforms.Platforms(),
			ActiveMenus:         menus.Len(),
			ReactionSubscribers: reactions,
			MessageSubscribers:  messages,
		}}, nil
	})
}
