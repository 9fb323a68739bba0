package setup

import (
	"fmt"

	"github.com/LavaJover/shvark-rate-service/internal/domain"
	"github.com/LavaJover/shvark-rate-service/internal/usecase"
)

type Usecases struct {
	Query     *usecase.RateQueryUsecase
	Pairs     *usecase.CurrencyPairUsecase
	Retention *usecase.RetentionUsecase
}

func InitializeUsecases(deps *Dependencies) (*Usecases, error) {
	policy, err := usecase.ParseDateMissPolicy(deps.Config.Query.DateMissPolicy)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return &Usecases{
		Query:     usecase.NewRateQueryUsecase(deps.Registry, deps.Repositories.History, deps.Source, policy, deps.Log, deps.Metrics),
		Pairs:     usecase.NewCurrencyPairUsecase(deps.Repositories.Pairs, deps.Registry, deps.Log),
		Retention: usecase.NewRetentionUsecase(deps.Registry, deps.Repositories.History, deps.Log, deps.Metrics),
	}, nil
}

// Pipeline holds the two stage handlers plus the scheduler that feeds them.
type Pipeline struct {
	Fetch     *usecase.FetchStage
	Save      *usecase.SaveStage
	Scheduler *usecase.SchedulerUsecase
}

func InitializePipeline(deps *Dependencies, fetches domain.FetchTaskQueue, saves domain.SaveTaskQueue) *Pipeline {
	return &Pipeline{
		Fetch:     usecase.NewFetchStage(deps.Source, saves, deps.Log, deps.Metrics),
		Save:      usecase.NewSaveStage(deps.Registry, deps.Repositories.History, deps.Log, deps.Metrics),
		Scheduler: usecase.NewSchedulerUsecase(deps.Repositories.Pairs, fetches, deps.Log, deps.Metrics),
	}
}
