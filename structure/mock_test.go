package structure

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

var _ Driver = (*Mock)(nil)

func TestMockDoesNotExportItsLock(t *testing.T) {
	typ := reflect.TypeOf(NewMock())
	for _, name := range []string{"Lock", "Unlock"} {
		_, ok := typ.MethodByName(name)
		assert.False(t, ok, "Mock should not have a %s method", name)
	}
}

func TestMockConcurrentExposureAndGain(t *testing.T) {
	m := NewMock()
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			m.SetVisibleGain(float32(i%8 + 1))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			m.SetVisibleExposure(0.02)
			m.VisibleGain()
		}
	}()
	wg.Wait()
	assert.Equal(t, float32(0.02), m.VisibleExposure())
	assert.Equal(t, float32(99%8+1), m.VisibleGain())
}
