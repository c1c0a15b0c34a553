package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mpetrov/trialgate/internal/model"
	"github.com/mpetrov/trialgate/internal/validate"
)

// LoadProtocol reads a protocol JSON file into the strict model type.
// Defaulting for absent optional fields happens here, at the boundary;
// wrong types for numeric fields are a validation error reported to the
// caller, never silently coerced. Warnings go to stderr; validation
// errors abort the load.
func LoadProtocol(path string) (*model.Protocol, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read protocol: %w", err)
	}

	var p model.Protocol
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("invalid protocol %s: %w", path, err)
	}

	issues := validate.Protocol(&p)
	if errs := validate.Errors(issues); len(errs) > 0 {
		return nil, fmt.Errorf("invalid protocol %s: %s", path, errs[0].String())
	}
	for _, issue := range issues {
		fmt.Fprintf(os.Stderr, "Warning: %s: %s\n", path, issue.String())
	}

	applyProtocolDefaults(&p)
	return &p, nil
}

func applyProtocolDefaults(p *model.Protocol) {
	if p.Metadata.TrialName == "" {
		p.Metadata.TrialName = "Unknown Trial"
	}
	if p.DrugProfile.DrugClass == "" {
		p.DrugProfile.DrugClass = "Unknown"
	}
	if p.StudyDesign.DesignType == "" {
		p.StudyDesign.DesignType = "Unknown"
	}
}
