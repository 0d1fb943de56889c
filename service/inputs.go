package service

import (
	"context"
	"fmt"

	"tenderpack-backend/assembler"
	"tenderpack-backend/library"
	"tenderpack-backend/models"
	"tenderpack-backend/placeholder"
)

// loadInputs reads the owner's profile and remembered values. A missing
// store or record yields empty inputs.
func loadInputs(ctx context.Context, profiles ProfileStore, owner string, tables map[string]placeholder.TableRows) (assembler.Inputs, error) {
	in := assembler.Inputs{Tables: tables}
	if profiles == nil {
		return in, nil
	}
	profile, err := profiles.LoadContractorProfile(ctx, owner)
	if err != nil {
		return in, fmt.Errorf("failed to load contractor profile: %w", err)
	}
	if profile != nil {
		in.Profile = *profile
	}
	memory, err := profiles.LoadProfileMemory(ctx, owner)
	if err != nil {
		return in, fmt.Errorf("failed to load profile memory: %w", err)
	}
	if memory != nil {
		in.Memory = memory.Fields
	}
	return in, nil
}

// ownerTemplates returns the owner's templates followed by library
// annexures the owner has not replaced with one of the same id.
func ownerTemplates(ctx context.Context, store TemplateStore, lib *library.Library, owner string) ([]models.Template, error) {
	var own []models.Template
	if store != nil {
		var err error
		own, err = store.ListTemplates(ctx, owner)
		if err != nil {
			return nil, fmt.Errorf("failed to list templates: %w", err)
		}
	}
	if lib == nil {
		return own, nil
	}
	seen := make(map[string]bool, len(own))
	for _, t := range own {
		seen[t.ID] = true
	}
	for _, t := range lib.Templates(owner) {
		if !seen[t.ID] {
			own = append(own, t)
		}
	}
	return own, nil
}

func schemaOf(lib *library.Library) []placeholder.FieldDescriptor {
	if lib == nil {
		return nil
	}
	return lib.Fields
}
