package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/tahiry-mg/tahiry/internal/jobs"
	"github.com/tahiry-mg/tahiry/internal/tableau"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// TableauWarmupJob pre-builds complete administrative accounts for the
// communes in scope so consultations hit the cache.
type TableauWarmupJob struct {
	Tableaux *tableau.Service
	Pool     *pgxpool.Pool
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	clock    func() time.Time
}

// NewTableauWarmupJob wires dependencies for the warmup handler.
func NewTableauWarmupJob(tableaux *tableau.Service, pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *TableauWarmupJob {
	return &TableauWarmupJob{
		Tableaux: tableaux,
		Pool:     pool,
		Logger:   logger,
		Metrics:  metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes tableau warmup tasks. A failing commune stops the run so
// the task retries with the remaining work still pending.
func (j *TableauWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("tableau warmup: handler not configured")
	}
	var payload TableauWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.ExerciceAnnee <= 0 {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskTableauWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Int("exercice_annee", payload.ExerciceAnnee))
	logger.Info("starting tableau warmup")

	communes, err := j.fetchCommunes(ctx, payload.RegionID)
	if err != nil {
		resultErr = err
		logger.Error("load warmup communes", slog.Any("error", err))
		return resultErr
	}
	if len(communes) == 0 {
		logger.Info("no communes discovered for warmup")
		return resultErr
	}

	start := j.now()
	warmed := 0
	for _, communeID := range communes {
		if err := j.warmCommune(ctx, communeID, payload.ExerciceAnnee); err != nil {
			resultErr = err
			logger.Error("warm commune", slog.Int64("commune_id", communeID), slog.Any("error", err))
			return resultErr
		}
		warmed++
	}
	j.metrics().AddWarmedTableaux(TaskTableauWarmup, warmed)
	logger.Info("completed tableau warmup", slog.Int("communes", warmed), slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *TableauWarmupJob) warmCommune(ctx context.Context, communeID int64, annee int) error {
	if j.Tableaux == nil {
		return nil
	}
	// Bound each commune so one slow build cannot stall the whole run.
	communeCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	_, err := j.Tableaux.BuildComplet(communeCtx, communeID, annee)
	return err
}

func (j *TableauWarmupJob) fetchCommunes(ctx context.Context, regionID *int64) ([]int64, error) {
	if j.Pool == nil {
		return nil, errors.New("tableau warmup: pool not configured")
	}
	query := `SELECT id FROM communes ORDER BY id`
	args := []any{}
	if regionID != nil {
		query = `SELECT id FROM communes WHERE region_id = $1 ORDER BY id`
		args = append(args, *regionID)
	}
	rows, err := j.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (j *TableauWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTableauWarmup))
	}
	return slog.Default().With(slog.String("job", TaskTableauWarmup))
}

func (j *TableauWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *TableauWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
