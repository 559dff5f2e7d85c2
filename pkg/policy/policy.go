// Package policy decides whether a caller may perform an action on an
// entity type. Rules live in authz.rego and are compiled once at startup.
package policy

import (
	"context"
	_ "embed"
	"fmt"

	"railway/pkg/apperr"
	"railway/pkg/models"

	"github.com/open-policy-agent/opa/rego"
)

//go:embed authz.rego
var module string

type Entity string

const (
	Stations   Entity = "stations"
	Routes     Entity = "routes"
	Crew       Entity = "crew"
	TrainTypes Entity = "train_types"
	Trains     Entity = "trains"
	Journeys   Entity = "journeys"
	Orders     Entity = "orders"
	Users      Entity = "users"
)

type Action string

const (
	List          Action = "list"
	Retrieve      Action = "retrieve"
	Create        Action = "create"
	Update        Action = "update"
	PartialUpdate Action = "partial_update"
	Delete        Action = "delete"
	UploadImage   Action = "upload_image"
)

type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "deny_unauthenticated"
	default:
		return "deny_forbidden"
	}
}

// Err maps a decision to the apperr taxonomy; Allow maps to nil.
func (d Decision) Err() error {
	switch d {
	case Allow:
		return nil
	case DenyUnauthenticated:
		return apperr.ErrUnauthenticated
	default:
		return apperr.ErrForbidden
	}
}

type Engine struct {
	query rego.PreparedEvalQuery
}

func New(ctx context.Context) (*Engine, error) {
	q, err := rego.New(
		rego.Query("data.railway.authz.allow"),
		rego.Module("authz.rego", module),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("policy: compile: %w", err)
	}
	return &Engine{query: q}, nil
}

// Decide is a pure function of its inputs. A denied anonymous caller gets
// DenyUnauthenticated, a denied authenticated caller DenyForbidden.
func (e *Engine) Decide(ctx context.Context, entity Entity, action Action, id models.Identity) (Decision, error) {
	input := map[string]interface{}{
		"entity": string(entity),
		"action": string(action),
		"identity": map[string]interface{}{
			"authenticated": id.Authenticated(),
			"staff":         id.Staff,
			"user_id":       id.UserID,
		},
	}

	rs, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return DenyForbidden, fmt.Errorf("policy: eval: %w", err)
	}

	if rs.Allowed() {
		return Allow, nil
	}
	if !id.Authenticated() {
		return DenyUnauthenticated, nil
	}
	return DenyForbidden, nil
}

// Check is Decide folded into a single error.
func (e *Engine) Check(ctx context.Context, entity Entity, action Action, id models.Identity) error {
	d, err := e.Decide(ctx, entity, action, id)
	if err != nil {
		return err
	}
	return d.Err()
}
