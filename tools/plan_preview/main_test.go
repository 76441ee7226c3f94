package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickwarner/openmediaplan/internal/models"
	"github.com/patrickwarner/openmediaplan/internal/planning"
)

func TestPrintPlan(t *testing.T) {
	engine, err := planning.NewEngine(planning.DefaultConfig())
	require.NoError(t, err)
	plan, err := engine.CalculatePlan(models.BriefingData{
		ClientName: "Garage Lambert",
		Budget:     40000,
		Objective:  models.ObjectiveEngagement,
		StartMonth: "Septembre",
		Duration:   4,
		TargetAge:  models.Age35To54,
		Region:     models.RegionWallonia,
		Sector:     models.SectorAutomobile,
		VideoNeed:  models.VideoExisting,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	printPlan(&buf, plan)
	out := buf.String()
	assert.Contains(t, out, "PLAN MÉDIA - Garage Lambert")
	assert.Contains(t, out, "Vidéo")
	assert.Contains(t, out, "/100")
}
