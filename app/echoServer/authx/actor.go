package authx

import (
	"errors"

	"bookmarket/model"

	"github.com/labstack/echo/v4"
)

const actorKey = "actor"

func SetActor(c echo.Context, a model.Actor) {
	c.Set(actorKey, a)
}

// ActorFromContext returns the authenticated caller placed in the context
// by the auth middleware.
func ActorFromContext(c echo.Context) (model.Actor, error) {
	a, ok := c.Get(actorKey).(model.Actor)
	if !ok {
		return model.Actor{}, errors.New("no actor in context")
	}
	return a, nil
}
