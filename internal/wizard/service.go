package wizard

import (
	"errors"
	"time"

	"agenda/internal/availability"
	"agenda/internal/conflicts"
	"agenda/internal/wizard/flow"
	apperrors "agenda/pkg/errors"
	"agenda/pkg/logger"
	"agenda/pkg/model"
	"agenda/pkg/retry"
	"agenda/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Dependencies struct {
	Catalog   Catalog
	Gateway   Gateway
	Customers CustomerResolver
	Store     BookingStore
	Retry     *retry.Executor
	Guard     SubmissionGuard
	Publisher EventPublisher
	Log       *logger.Logger
}

type Config struct {
	WorkStart       string
	WorkEnd         string
	StepMin         int
	MaxAlternatives int
	Location        *time.Location
	Now             func() time.Time
}

// Service holds what every wizard session shares: collaborators, the
// submission flow and the customer validator.
type Service struct {
	catalog   Catalog
	gateway   Gateway
	customers CustomerResolver
	store     BookingStore
	retry     *retry.Executor
	guard     SubmissionGuard
	publisher EventPublisher
	resolver  *conflicts.Resolver
	engine    *flow.Engine[submission]
	validate  *validator.Validate
	cfg       Config
	log       *logger.Logger
}

func NewService(deps Dependencies, cfg Config) *Service {
	log := deps.Log
	if log == nil {
		log = logger.Discard()
	}
	if cfg.WorkStart == "" {
		cfg.WorkStart = availability.DefaultWorkStart
	}
	if cfg.WorkEnd == "" {
		cfg.WorkEnd = availability.DefaultWorkEnd
	}
	if cfg.StepMin <= 0 {
		cfg.StepMin = availability.DefaultStepMin
	}
	if cfg.MaxAlternatives <= 0 {
		cfg.MaxAlternatives = conflicts.DefaultLimit
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	executor := deps.Retry
	if executor == nil {
		executor = retry.NewExecutor(retry.DefaultPolicy(), log)
	}
	guard := deps.Guard
	if guard == nil {
		guard = nopGuard{}
	}

	v := validator.New()
	if err := v.RegisterValidation("local_phone", func(fl validator.FieldLevel) bool {
		return sanitizer.IsValidLocalPhone(fl.Field().String())
	}); err != nil {
		log.Fatal("Failed to register 'local_phone' validator", "error", err)
	}

	s := &Service{
		catalog:   deps.Catalog,
		gateway:   deps.Gateway,
		customers: deps.Customers,
		store:     deps.Store,
		retry:     executor,
		guard:     guard,
		publisher: deps.Publisher,
		resolver:  conflicts.NewResolver(cfg.MaxAlternatives),
		validate:  v,
		cfg:       cfg,
		log:       log,
	}
	s.engine = s.buildEngine()
	return s
}

// Start opens a new wizard session for tenantID.
func (s *Service) Start(tenantID string) *Wizard {
	id := uuid.NewString()
	w := &Wizard{
		id:       id,
		tenantID: tenantID,
		svc:      s,
		state:    initialState(),
		log:      s.log.With("session_id", id, "tenant_id", tenantID),
	}
	w.touch()
	return w
}

func (s *Service) today() time.Time {
	return model.DayOf(s.cfg.Now().In(s.cfg.Location))
}

func (s *Service) normalizeCustomer(info model.CustomerInfo) model.CustomerInfo {
	return model.CustomerInfo{
		Name:  sanitizer.NormalizeName(info.Name),
		Phone: sanitizer.NormalizePhone(info.Phone),
		Email: sanitizer.NormalizeEmail(info.Email),
		Notes: sanitizer.NormalizeNotes(info.Notes),
	}
}

func (s *Service) validateCustomer(info model.CustomerInfo) error {
	err := s.validate.Struct(info)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := map[string]any{}
		for _, fe := range validationErrs {
			fields[fe.Field()] = fe.Tag()
		}
		return apperrors.Validation("Invalid customer information", fields)
	}
	return apperrors.Validation("Invalid customer information", map[string]any{"error": err.Error()})
}
