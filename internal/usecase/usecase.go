package usecase

import "context"

type CheckerUseCase interface {
	CheckConsistency(ctx context.Context) ([]MismatchRow, error)
	SearchSimilar(ctx context.Context, productID string, topK int) ([]SearchHit, error)
}

type ValidatorUseCase interface {
	Validate(ctx context.Context) (*ValidationReport, error)
}
