package domain

import (
	"github.com/yungbote/bmu-faultfinder/internal/domain/catalog"
	"github.com/yungbote/bmu-faultfinder/internal/domain/joblog"
)

type (
	Model       = catalog.Model
	Subsystem   = catalog.Subsystem
	Symptom     = catalog.Symptom
	Component   = catalog.Component
	SafetyNote  = catalog.SafetyNote
	LikelyCause = catalog.LikelyCause
	Check       = catalog.Check
	Step        = catalog.Step
	StepRef     = catalog.StepRef
	FaultFlow   = catalog.FaultFlow
	Dataset     = catalog.Dataset

	Job      = joblog.Job
	JobInput = joblog.Input
)
