package service

import (
	"context"
	"fmt"
)

// maxGenerateAttempts caps the generate-and-check loop. With ~5.6e10
// possible codes a second collision in a row already suggests the store is
// misbehaving, so the cap exists to fail loudly rather than spin.
const maxGenerateAttempts = 10

// CodeResolver turns a candidate (or a request for a fresh code) into a
// code that was free at check time. It does not guarantee atomicity: the
// storage unique constraint is the final arbiter, and the registry retries
// once when an insert loses that race.
type CodeResolver struct {
	store  CodeStore
	gen    CodeGenerator
	length int
}

func NewCodeResolver(store CodeStore, gen CodeGenerator, length int) *CodeResolver {
	if length <= 0 {
		length = DefaultCodeLength
	}
	return &CodeResolver{
		store:  store,
		gen:    gen,
		length: length,
	}
}

// Reserve returns a code free in the combined shortCode/customAlias
// namespace. A custom alias gets exactly one existence check and fails with
// ErrAliasTaken when occupied; generated candidates are retried up to
// maxGenerateAttempts before ErrGenerationExhausted.
func (r *CodeResolver) Reserve(ctx context.Context, candidate string, isCustom bool) (string, error) {
	if isCustom {
		exists, err := r.store.CodeExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check alias availability: %w", err)
		}
		if exists {
			return "", ErrAliasTaken
		}
		return candidate, nil
	}

	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		code := r.gen.Generate(r.length)

		exists, err := r.store.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check code availability: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrGenerationExhausted
}
