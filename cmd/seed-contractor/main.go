package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"tenderpack-backend/config"
	"tenderpack-backend/models"
	"tenderpack-backend/placeholder"
	"tenderpack-backend/repository"
)

// coverLetter is written in the old editor's syntax on purpose; it is
// migrated before it is stored.
const coverLetter = `<p>To,<br>The Executive Engineer,<br>{{field:tender.department}}</p>
<p>Sub: Submission of bid for {{field:tender.nameOfWork}} (Tender No. {{tender_no}})</p>
<p>Sir, we {{firmName}} submit our bid with EMD by {{field:bid.emdMode}}.</p>
<p>GSTIN: {{contractor.gstin}}</p>`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	owner := os.Getenv("SEED_OWNER")
	if owner == "" {
		owner = "demo-contractor"
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	profiles := repository.NewProfileRepository(pool)
	templates := repository.NewTemplateRepository(pool)

	// Check if the contractor already exists
	existing, err := profiles.LoadContractorProfile(ctx, owner)
	if err != nil {
		log.Fatalf("Failed to look up contractor: %v", err)
	}
	if existing != nil {
		log.Printf("Contractor %s already exists (%s)", owner, existing.FirmName)
		return
	}

	now := time.Now()
	profile := &models.ContractorProfile{
		YojID:             owner,
		FirmName:          "Demo Constructions",
		ProprietorName:    "A. Kumar",
		Designation:       "Proprietor",
		Address:           "14 Civil Lines",
		City:              "Lucknow",
		State:             "Uttar Pradesh",
		Pincode:           "226001",
		GSTIN:             "09ABCDE1234F1Z5",
		PAN:               "ABCDE1234F",
		RegistrationClass: "Class C",
		UpdatedAt:         now,
	}
	if err := profiles.SaveContractorProfile(ctx, profile); err != nil {
		log.Fatalf("Failed to create contractor profile: %v", err)
	}

	body, stats := placeholder.MigrateLegacyTokens(coverLetter)
	tpl := &models.Template{
		ID:        uuid.NewString(),
		YojID:     owner,
		Name:      "Bid cover letter",
		Kind:      models.KindTemplate,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := templates.SaveTemplate(ctx, tpl); err != nil {
		log.Fatalf("Failed to create template: %v", err)
	}

	fmt.Printf("✅ Demo contractor created successfully!\n")
	fmt.Printf("   Owner: %s\n", owner)
	fmt.Printf("   Firm: %s\n", profile.FirmName)
	fmt.Printf("   Template: %s (%d legacy tokens migrated)\n", tpl.ID, stats.Total)
}
