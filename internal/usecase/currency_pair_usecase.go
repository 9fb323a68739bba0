package usecase

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/LavaJover/shvark-rate-service/internal/domain"
)

type CurrencyPairUsecase struct {
	repo     domain.CurrencyPairRepository
	registry *domain.PairRegistry
	log      *slog.Logger
}

func NewCurrencyPairUsecase(repo domain.CurrencyPairRepository, registry *domain.PairRegistry, log *slog.Logger) *CurrencyPairUsecase {
	if log == nil {
		log = slog.Default()
	}
	return &CurrencyPairUsecase{repo: repo, registry: registry, log: log}
}

// AddPair starts tracking base/quote. The pair must be routable, otherwise
// every fetch for it would end at the save stage.
func (u *CurrencyPairUsecase) AddPair(base, quote string) (*domain.CurrencyPair, error) {
	pair, err := domain.NewPair(base, quote)
	if err != nil {
		return nil, err
	}
	if !u.registry.IsSupported(pair) {
		return nil, fmt.Errorf("%w: %s has no storage target", domain.ErrUnsupportedPair, pair)
	}

	exists, err := u.exists(pair)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrPairAlreadyExists, pair)
	}

	cp := domain.NewCurrencyPair(pair)
	if err := u.repo.Create(cp); err != nil {
		return nil, err
	}
	u.log.Info("currency pair added", "pair", pair.Code(), "id", cp.ID)
	return cp, nil
}

func (u *CurrencyPairUsecase) ActivatePair(id int64) error {
	return u.setActive(id, true)
}

func (u *CurrencyPairUsecase) DeactivatePair(id int64) error {
	return u.setActive(id, false)
}

func (u *CurrencyPairUsecase) setActive(id int64, active bool) error {
	cp, err := u.repo.GetByID(id)
	if err != nil {
		return err
	}
	if active {
		cp.Activate()
	} else {
		cp.Deactivate()
	}
	if err := u.repo.Update(cp); err != nil {
		return err
	}
	u.log.Info("currency pair updated", "pair", cp.Pair.Code(), "id", id, "active", active)
	return nil
}

func (u *CurrencyPairUsecase) RemovePair(id int64) error {
	if err := u.repo.Delete(id); err != nil {
		return err
	}
	u.log.Info("currency pair removed", "id", id)
	return nil
}

func (u *CurrencyPairUsecase) ListActivePairs() ([]*domain.CurrencyPair, error) {
	return u.repo.ListActive()
}

func (u *CurrencyPairUsecase) ListAllPairs() ([]*domain.CurrencyPair, error) {
	return u.repo.ListAll()
}

func (u *CurrencyPairUsecase) PairExists(base, quote string) (bool, error) {
	pair, err := domain.NewPair(base, quote)
	if err != nil {
		return false, err
	}
	return u.exists(pair)
}

func (u *CurrencyPairUsecase) exists(pair domain.Pair) (bool, error) {
	_, err := u.repo.FindByPair(pair)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrPairNotFound):
		return false, nil
	default:
		return false, err
	}
}
