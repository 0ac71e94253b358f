package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"clipper/infras/otel"
	"clipper/infras/postgres"
	"clipper/internal/domains/schedule/model"
	"clipper/shared/constant"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

const (
	tableName = "schedule_state"

	// The whole availability state is persisted as one row; the fixed key
	// makes the upsert target unambiguous.
	stateRowID = 1
)

// Schedule persists the availability state as a single blob. Load always
// yields a usable state: a missing or unreadable blob falls back to the
// default empty calendar.
type Schedule interface {
	Load(ctx context.Context) (model.State, error)
	Save(ctx context.Context, state model.State) error
}

type repositoryImpl struct {
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Schedule {
	return &repositoryImpl{
		db:   db,
		otel: otel,
	}
}

func (repo *repositoryImpl) Load(ctx context.Context) (model.State, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+"."+model.EntityName+".Load")
	defer scope.End()

	query := fmt.Sprintf("SELECT state FROM %s WHERE id = $1", tableName)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var raw []byte

	err := repo.db.Read.GetContext(ctx, &raw, query, stateRowID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultState(), nil
	}

	if err != nil {
		scope.TraceError(err)

		return model.State{}, fmt.Errorf("failed to load %s: %w", model.EntityName, err)
	}

	var state model.State
	if err := json.Unmarshal(raw, &state); err != nil {
		// A corrupt blob must never take the service down; start from the
		// default state and let the next mutation overwrite it.
		log.Warn().Err(err).Msg("stored schedule state is unreadable, falling back to defaults")

		return model.DefaultState(), nil
	}

	return state, nil
}

func (repo *repositoryImpl) Save(ctx context.Context, state model.State) error {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+"."+model.EntityName+".Save")
	defer scope.End()

	raw, err := json.Marshal(state)
	if err != nil {
		scope.TraceError(err)

		return fmt.Errorf("failed to marshal %s: %w", model.EntityName, err)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (id, state) VALUES ($1, $2) ON CONFLICT (id) DO UPDATE SET state = EXCLUDED.state, modified_at = now()",
		tableName,
	)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if _, err := repo.db.Write.ExecContext(ctx, query, stateRowID, raw); err != nil {
		scope.TraceError(err)

		return fmt.Errorf("failed to save %s: %w", model.EntityName, err)
	}

	return nil
}
