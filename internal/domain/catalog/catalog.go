package catalog

import (
	"bytes"
	"encoding/json"
)

type Model struct {
	ID           string `yaml:"id" json:"id" validate:"required"`
	Name         string `yaml:"name" json:"name" validate:"required"`
	Manufacturer string `yaml:"manufacturer" json:"manufacturer"`
	Site         string `yaml:"site" json:"site"`
	Notes        string `yaml:"notes" json:"notes"`
}

type Subsystem struct {
	ID       string   `yaml:"id" json:"id" validate:"required"`
	ModelIDs []string `yaml:"modelIds" json:"modelIds" validate:"required,min=1,dive,required"`
	Name     string   `yaml:"name" json:"name" validate:"required"`
}

// AppliesTo reports whether modelID is one of the subsystem's models.
func (s Subsystem) AppliesTo(modelID string) bool {
	return containsString(s.ModelIDs, modelID)
}

type Symptom struct {
	ID          string `yaml:"id" json:"id" validate:"required"`
	SubsystemID string `yaml:"subsystemId" json:"subsystemId" validate:"required"`
	Title       string `yaml:"title" json:"title" validate:"required"`
	Description string `yaml:"description" json:"description"`
}

// Component is a physical part. Symptoms holds free-text titles for
// documentation and is not cross-referenced against Symptom ids.
type Component struct {
	ID           string   `yaml:"id" json:"id" validate:"required"`
	ModelID      string   `yaml:"modelId" json:"modelId" validate:"required"`
	SubsystemID  string   `yaml:"subsystemId" json:"subsystemId" validate:"required"`
	Name         string   `yaml:"name" json:"name" validate:"required"`
	PartNumber   string   `yaml:"partNumber" json:"partNumber"`
	Location     string   `yaml:"location" json:"location"`
	FailureModes []string `yaml:"failureModes" json:"failureModes"`
	Symptoms     []string `yaml:"symptoms" json:"symptoms"`
	Replacement  string   `yaml:"replacement" json:"replacement"`
}

type SafetyNote struct {
	ID   string `yaml:"id" json:"id" validate:"required"`
	Text string `yaml:"text" json:"text" validate:"required"`
}

// LikelyCause weights are authored guidance and need not sum to 1.
type LikelyCause struct {
	Component   string  `yaml:"component" json:"component" validate:"required"`
	Probability float64 `yaml:"probability" json:"probability" validate:"gte=0,lte=1"`
}

type Check struct {
	ID       string `yaml:"id" json:"id" validate:"required"`
	Text     string `yaml:"text" json:"text" validate:"required"`
	Expected string `yaml:"expected" json:"expected"`
}

// StepRef names the next step or a resolution key. The empty ref is the
// terminal marker and encodes as JSON null.
type StepRef string

func (r StepRef) IsTerminal() bool { return r == "" }

func (r StepRef) MarshalJSON() ([]byte, error) {
	if r == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(r))
}

func (r *StepRef) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*r = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*r = StepRef(s)
	return nil
}

type Step struct {
	ID         string  `yaml:"id" json:"id" validate:"required"`
	Title      string  `yaml:"title" json:"title" validate:"required"`
	Detail     string  `yaml:"detail" json:"detail"`
	NextOnPass StepRef `yaml:"nextOnPass" json:"nextOnPass"`
	NextOnFail StepRef `yaml:"nextOnFail" json:"nextOnFail"`
}

type FaultFlow struct {
	ID           string            `yaml:"id" json:"id" validate:"required"`
	ModelIDs     []string          `yaml:"modelIds" json:"modelIds" validate:"required,min=1,dive,required"`
	SubsystemID  string            `yaml:"subsystemId" json:"subsystemId" validate:"required"`
	SymptomID    string            `yaml:"symptomId" json:"symptomId" validate:"required"`
	LikelyCauses []LikelyCause     `yaml:"likelyCauses" json:"likelyCauses" validate:"dive"`
	Checks       []Check           `yaml:"checks" json:"checks" validate:"dive"`
	Steps        []Step            `yaml:"steps" json:"steps" validate:"required,min=1,dive"`
	Resolutions  map[string]string `yaml:"resolutions" json:"resolutions"`
	Safety       []string          `yaml:"safety" json:"safety"`
}

// AppliesTo reports whether modelID is listed on the flow.
func (f FaultFlow) AppliesTo(modelID string) bool {
	return containsString(f.ModelIDs, modelID)
}

// Step returns the step with the given id.
func (f FaultFlow) Step(id string) (Step, bool) {
	for _, s := range f.Steps {
		if s.ID == id {
			return s, true
		}
	}
	return Step{}, false
}

// Resolution returns the resolution text for a failure-branch key.
func (f FaultFlow) Resolution(key string) (string, bool) {
	text, ok := f.Resolutions[key]
	return text, ok
}

// Dataset is the document shape shared by the embedded YAML, the offline
// export and browser clients.
type Dataset struct {
	Models      []Model      `yaml:"models" json:"models" validate:"dive"`
	Subsystems  []Subsystem  `yaml:"subsystems" json:"subsystems" validate:"dive"`
	Symptoms    []Symptom    `yaml:"symptoms" json:"symptoms" validate:"dive"`
	Components  []Component  `yaml:"components" json:"components" validate:"dive"`
	SafetyNotes []SafetyNote `yaml:"safetyNotes" json:"safetyNotes" validate:"dive"`
	FaultFlows  []FaultFlow  `yaml:"faultFlows" json:"faultFlows" validate:"dive"`
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
