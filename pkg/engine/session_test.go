package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearfreight/tariffcore/pkg/config"
	"github.com/clearfreight/tariffcore/pkg/gri"
	"github.com/clearfreight/tariffcore/pkg/ledger"
)

func TestSessionManager_SerializesSameID(t *testing.T) {
	m := NewSessionManager()
	led := ledger.New("cls-shared")
	eng, err := New(gri.NewCatalog(), config.Default(), led, "test product")
	require.NoError(t, err)

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.Do("cls-shared", func() error {
				_, err := eng.RecordDecision(decision(gri.RuleGRI1, "heading_match", "yes"))
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, led.Decisions(), workers)
	assert.Len(t, eng.ExportContext().Decisions, workers)
}

func TestSessionManager_DistinctIDsDoNotContend(t *testing.T) {
	m := NewSessionManager()

	release := make(chan struct{})
	held := make(chan struct{})
	go func() {
		_ = m.Do("cls-a", func() error {
			close(held)
			<-release
			return nil
		})
	}()

	<-held
	// cls-b proceeds while cls-a's lock is held.
	done := make(chan struct{})
	go func() {
		_ = m.Do("cls-b", func() error { return nil })
		close(done)
	}()
	<-done
	close(release)
}

func TestSessionManager_PropagatesError(t *testing.T) {
	m := NewSessionManager()
	err := m.Do("cls-a", func() error { return gri.ErrRuleNotFound })
	assert.ErrorIs(t, err, gri.ErrRuleNotFound)
}
