package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/port"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
	"github.com/bibbank/underwriting/pkg/money"
)

const defaultCurrency = "USD"

// CreateSubmissionUseCase opens a new submission with its coverages,
// locations and loss history.
type CreateSubmissionUseCase struct {
	submissions port.SubmissionRepository
	logger      *slog.Logger
	now         func() time.Time
}

// NewCreateSubmissionUseCase wires dependencies.
func NewCreateSubmissionUseCase(submissions port.SubmissionRepository, logger *slog.Logger) *CreateSubmissionUseCase {
	return &CreateSubmissionUseCase{
		submissions: submissions,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Execute builds the aggregate, optionally marks it received and saves it.
func (uc *CreateSubmissionUseCase) Execute(
	ctx context.Context,
	req dto.CreateSubmissionRequest,
) (dto.SubmissionResponse, error) {
	now := uc.now()
	currency := req.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	// 1. Build the insured.
	insured, err := buildInsured(req.Insured, currency)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	// 2. Allocate a submission number and create the aggregate.
	number, err := uc.submissions.NextSubmissionNumber(ctx, req.TenantID, now.Year())
	if err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("allocate submission number: %w", err)
	}
	sub, err := model.NewSubmission(req.TenantID, number, insured, now)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if req.ProducerID != "" || req.ProducerName != "" {
		if err := sub.SetProducer(req.ProducerID, req.ProducerName, now); err != nil {
			return dto.SubmissionResponse{}, err
		}
	}

	// 3. Attach coverages, locations and losses.
	for i, c := range req.Coverages {
		if err := addCoverage(sub, c, currency); err != nil {
			return dto.SubmissionResponse{}, fmt.Errorf("coverage %d: %w", i+1, err)
		}
	}
	for i, l := range req.Locations {
		if err := addLocation(sub, l, currency); err != nil {
			return dto.SubmissionResponse{}, fmt.Errorf("location %d: %w", i+1, err)
		}
	}
	for i, l := range req.Losses {
		if err := addLoss(sub, l, currency); err != nil {
			return dto.SubmissionResponse{}, fmt.Errorf("loss %d: %w", i+1, err)
		}
	}

	// 4. Optionally move straight to Received.
	if req.MarkReceived {
		if err := sub.MarkAsReceived(now); err != nil {
			return dto.SubmissionResponse{}, err
		}
	}

	// 5. Persist (events go to the outbox in the same transaction).
	if err := uc.submissions.Save(ctx, sub); err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("save submission: %w", err)
	}

	uc.logger.InfoContext(ctx, "submission created",
		"tenant_id", sub.TenantID(),
		"submission_id", sub.ID(),
		"submission_number", sub.SubmissionNumber(),
		"status", sub.Status().String(),
	)
	return toSubmissionResponse(sub), nil
}

// ---------------------------------------------------------------------------
// Builders
// ---------------------------------------------------------------------------

func buildInsured(in dto.InsuredDTO, currency string) (model.Insured, error) {
	insured, err := model.NewInsured(in.Name)
	if err != nil {
		return model.Insured{}, err
	}
	insured = insured.WithDBAName(in.DBAName)

	if in.Address != nil {
		addr, err := buildAddress(*in.Address)
		if err != nil {
			return model.Insured{}, model.ErrInvalidSubmission.WithDescription("insured address: %v", err)
		}
		insured = insured.WithAddress(addr)
	}
	if in.NaicsCode != "" || in.SicCode != "" || in.IndustryDescription != "" {
		ic, err := valueobject.NewIndustryClassification(in.NaicsCode, in.SicCode, in.IndustryDescription)
		if err != nil {
			return model.Insured{}, model.ErrInvalidSubmission.WithDescription("industry: %v", err)
		}
		insured = insured.WithIndustry(ic)
	}
	if in.AnnualRevenue != nil {
		revenue, err := amount(*in.AnnualRevenue, currency)
		if err != nil {
			return model.Insured{}, err
		}
		if insured, err = insured.WithAnnualRevenue(revenue); err != nil {
			return model.Insured{}, err
		}
	}
	if in.YearsInBusiness != nil {
		if insured, err = insured.WithYearsInBusiness(*in.YearsInBusiness); err != nil {
			return model.Insured{}, err
		}
	}
	if in.EmployeeCount != nil {
		if insured, err = insured.WithEmployeeCount(*in.EmployeeCount); err != nil {
			return model.Insured{}, err
		}
	}
	return insured, nil
}

func buildAddress(a dto.AddressDTO) (valueobject.Address, error) {
	return valueobject.NewAddress(a.Street1, a.Street2, a.City, a.State, a.PostalCode, a.Country)
}

func addCoverage(sub *model.Submission, in dto.CoverageDTO, currency string) error {
	ct, err := valueobject.NewCoverageType(in.Type)
	if err != nil {
		return model.ErrInvalidSubmission.WithDescription("%v", err)
	}
	c, err := sub.AddCoverage(ct)
	if err != nil {
		return err
	}
	if in.RequestedLimit != nil {
		limit, err := amount(*in.RequestedLimit, currency)
		if err != nil {
			return err
		}
		if err := c.SetRequestedLimit(limit); err != nil {
			return err
		}
	}
	if in.Deductible != nil {
		deductible, err := amount(*in.Deductible, currency)
		if err != nil {
			return err
		}
		if err := c.SetDeductible(deductible); err != nil {
			return err
		}
	}
	if in.EffectiveDate != nil {
		var expiration time.Time
		if in.ExpirationDate != nil {
			expiration = *in.ExpirationDate
		}
		if err := c.SetPolicyPeriod(*in.EffectiveDate, expiration); err != nil {
			return err
		}
	}
	if in.CurrentCarrier != "" || in.CurrentPremium != nil {
		premium, err := optionalAmount(in.CurrentPremium, currency)
		if err != nil {
			return err
		}
		if err := c.SetCurrentInsurance(in.CurrentCarrier, premium); err != nil {
			return err
		}
	}
	return nil
}

func addLocation(sub *model.Submission, in dto.LocationDTO, currency string) error {
	addr, err := buildAddress(in.Address)
	if err != nil {
		return model.ErrInvalidSubmission.WithDescription("location address: %v", err)
	}
	loc, err := sub.AddLocation(addr)
	if err != nil {
		return err
	}

	var ct valueobject.ConstructionType
	if in.ConstructionType != "" {
		if ct, err = valueobject.NewConstructionType(in.ConstructionType); err != nil {
			return model.ErrInvalidSubmission.WithDescription("%v", err)
		}
	}
	if err := loc.SetConstruction(ct, in.YearBuilt, in.Stories, in.SquareFootage); err != nil {
		return err
	}

	building, err := optionalAmount(in.BuildingValue, currency)
	if err != nil {
		return err
	}
	contents, err := optionalAmount(in.ContentsValue, currency)
	if err != nil {
		return err
	}
	businessIncome, err := optionalAmount(in.BusinessIncomeValue, currency)
	if err != nil {
		return err
	}
	if err := loc.SetValues(building, contents, businessIncome); err != nil {
		return err
	}
	if err := loc.SetOccupancy(in.Occupancy); err != nil {
		return err
	}
	return loc.SetProtection(in.HasSprinklers, in.HasAlarm, in.ProtectionClass)
}

func addLoss(sub *model.Submission, in dto.LossDTO, currency string) error {
	loss, err := sub.AddLoss(in.Date, in.Description)
	if err != nil {
		return err
	}
	if err := loss.SetClaimNumber(in.ClaimNumber); err != nil {
		return err
	}
	paid, err := optionalAmount(in.Paid, currency)
	if err != nil {
		return err
	}
	reserved, err := optionalAmount(in.Reserved, currency)
	if err != nil {
		return err
	}
	if err := loss.SetAmounts(paid, reserved); err != nil {
		return err
	}
	if in.Status != "" {
		status, err := valueobject.NewLossStatus(in.Status)
		if err != nil {
			return model.ErrInvalidSubmission.WithDescription("%v", err)
		}
		if err := loss.SetStatus(status); err != nil {
			return err
		}
	}
	return loss.SetSubrogation(in.Subrogation)
}

func amount(d decimal.Decimal, currency string) (money.Money, error) {
	cur, err := money.NewCurrency(currency)
	if err != nil {
		return money.Money{}, model.ErrInvalidSubmission.WithDescription("%v", err)
	}
	return money.New(d, cur), nil
}

func optionalAmount(d *decimal.Decimal, currency string) (*money.Money, error) {
	if d == nil {
		return nil, nil
	}
	m, err := amount(*d, currency)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
