package usecase

import (
	"context"
	"errors"
	"testing"

	"AlgoReport/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceRouter_DispatchesByKind(t *testing.T) {
	equity := &fakeProvider{bars: 5}
	crypto := &fakeProvider{bars: 5}
	m := newCountingMetrics()
	r := NewSourceRouter(equity, crypto, m)

	_, err := r.Fetch(context.Background(), models.FetchSpec{Symbol: "AAPL", Kind: models.SourceEquity})
	require.NoError(t, err)
	_, err = r.Fetch(context.Background(), models.FetchSpec{Symbol: "BTC/USDT", Kind: models.SourceCryptoPair})
	require.NoError(t, err)

	assert.Len(t, equity.specs, 1)
	assert.Len(t, crypto.specs, 1)
	assert.Equal(t, models.Symbol("BTC/USDT"), crypto.specs[0].Symbol)
	assert.Equal(t, 1, m.fetches["equity:ok"])
	assert.Equal(t, 1, m.fetches["crypto_pair:ok"])
}

func TestSourceRouter_RecordsFailures(t *testing.T) {
	equity := &fakeProvider{bars: 5, errs: map[models.Symbol]error{"NOPE": models.ErrInvalidSymbol}}
	m := newCountingMetrics()
	r := NewSourceRouter(equity, nil, m)

	_, err := r.Fetch(context.Background(), models.FetchSpec{Symbol: "NOPE"})
	assert.True(t, errors.Is(err, models.ErrInvalidSymbol))
	assert.Equal(t, 1, m.fetches["equity:error"])

	_, err = r.Fetch(context.Background(), models.FetchSpec{Symbol: "ETH/USDT", Kind: models.SourceCryptoPair})
	assert.True(t, errors.Is(err, models.ErrDataUnavailable))
}
