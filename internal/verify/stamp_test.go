package verify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sydcare/carerank/internal/model"
)

func TestStampPricingFromRegistryFigures(t *testing.T) {
	corpus := t.TempDir()
	dir := filepath.Join(corpus, "racs_0001")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pricing_schedule.pdf"), []byte("x"), 0o644))

	rad := 400000.0
	p := model.Provider{ProviderID: "racs_0001", RAD: &rad}

	a, err := Stamp(p, corpus, StampOptions{
		Subject:     model.SubjectPricing,
		Status:      model.StatusPass,
		Confidence:  0.9,
		ObservedAt:  "2025-09-08T00:00:00Z",
		DefaultMPIR: 7.78,
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusPass, a.Status)
	assert.InDelta(t, 0.9, a.Confidence, 0.001)
	require.NotNil(t, a.Claim)
	require.NotNil(t, a.Claim.DAP)
	// 400000 * 7.78% / 365, half-up to cents
	assert.InDelta(t, 85.26, *a.Claim.DAP, 0.001)
	require.NotNil(t, a.Claim.MPIR)
	assert.InDelta(t, 7.78, *a.Claim.MPIR, 0.001)
	require.NotNil(t, a.Evidence.File)
	assert.Equal(t, "corpus/racs_0001/pricing_schedule.pdf", *a.Evidence.File)
}

func TestStampPrefersRegistryMPIR(t *testing.T) {
	rad, mpir := 500000.0, 8.36
	p := model.Provider{ProviderID: "racs_0002", RAD: &rad, MPIR: &mpir}

	a, err := Stamp(p, t.TempDir(), StampOptions{
		Subject:     model.SubjectPricing,
		Status:      model.StatusPass,
		Confidence:  0.8,
		ObservedAt:  "2025-09-08T00:00:00Z",
		DefaultMPIR: 7.78,
	})
	require.NoError(t, err)
	assert.InDelta(t, 114.52, *a.Claim.DAP, 0.001)
	assert.Nil(t, a.Evidence.File)
}

func TestStampComplianceNeedsNoFigures(t *testing.T) {
	p := model.Provider{ProviderID: "racs_0003"}

	a, err := Stamp(p, t.TempDir(), StampOptions{
		Subject:    model.SubjectCompliance,
		Status:     model.StatusFail,
		Confidence: 0.7,
		ObservedAt: "2025-09-08T00:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusFail, a.Status)
	assert.Nil(t, a.Claim)
}

func TestStampRejectsPricingWithoutRAD(t *testing.T) {
	p := model.Provider{ProviderID: "racs_0004"}

	_, err := Stamp(p, t.TempDir(), StampOptions{
		Subject:    model.SubjectPricing,
		Status:     model.StatusPass,
		ObservedAt: "2025-09-08T00:00:00Z",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no RAD")
}

func TestStampRejectsBadSubjectOrStatus(t *testing.T) {
	p := model.Provider{ProviderID: "racs_0005"}

	_, err := Stamp(p, t.TempDir(), StampOptions{Subject: "vibes", Status: model.StatusPass})
	require.Error(t, err)

	_, err = Stamp(p, t.TempDir(), StampOptions{Subject: model.SubjectCompliance, Status: "maybe"})
	require.Error(t, err)
}
