package services

import (
	"testing"

	"github.com/GrainArc/SiteMeasure/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInteractionTransitions(t *testing.T) {
	var it Interaction
	assert.Equal(t, ModeIdle, it.Mode())

	require.NoError(t, it.StartDraw(models.KindPolygon))
	assert.Equal(t, ModeState{Mode: "drawing", Kind: models.KindPolygon}, it.State())
	require.NoError(t, it.FinishDraw())

	require.NoError(t, it.StartModify("f1"))
	id, err := it.ModifyingID("end modify")
	require.NoError(t, err)
	assert.Equal(t, "f1", id)
	require.NoError(t, it.CancelModify())
	assert.Equal(t, ModeIdle, it.Mode())
}

func TestInteractionRejectsInvalidEvents(t *testing.T) {
	var it Interaction
	assert.ErrorIs(t, it.FinishDraw(), models.ErrModeConflict)
	assert.ErrorIs(t, it.CancelDraw(), models.ErrModeConflict)
	assert.ErrorIs(t, it.FinishModify(), models.ErrModeConflict)
	assert.ErrorIs(t, it.CancelModify(), models.ErrModeConflict)

	require.NoError(t, it.StartDraw(models.KindPolyline))
	assert.ErrorIs(t, it.StartDraw(models.KindPolygon), models.ErrModeConflict)
	assert.ErrorIs(t, it.StartModify("x"), models.ErrModeConflict)
	assert.ErrorIs(t, it.RequireIdle("clear"), models.ErrModeConflict)
	assert.Equal(t, ModeState{Mode: "drawing", Kind: models.KindPolyline}, it.State())

	require.NoError(t, it.CancelDraw())
	require.NoError(t, it.StartModify("x"))
	assert.ErrorIs(t, it.StartDraw(models.KindPolygon), models.ErrModeConflict)
	_, err := it.DrawingKind("preview draw")
	assert.ErrorIs(t, err, models.ErrModeConflict)
	assert.Equal(t, ModeState{Mode: "modifying", FeatureID: "x"}, it.State())
}

func TestInteractionUnknownKind(t *testing.T) {
	var it Interaction
	assert.ErrorIs(t, it.StartDraw("Circle"), models.ErrInvalidGeometry)
	assert.Equal(t, ModeIdle, it.Mode())
}
