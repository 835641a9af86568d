package identity

import (
	"github.com/casbin/casbin/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taskgrid/taskgrid/internal/identity/inbound"
	"github.com/taskgrid/taskgrid/internal/identity/outbound/db"
	"github.com/taskgrid/taskgrid/internal/identity/outbound/mq"
	"github.com/taskgrid/taskgrid/internal/identity/outbound/ticket"
	"github.com/taskgrid/taskgrid/internal/identity/usecase"
	"github.com/taskgrid/taskgrid/internal/pkg/cache"
	"github.com/taskgrid/taskgrid/internal/pkg/clock"
	"github.com/taskgrid/taskgrid/internal/pkg/config"
	"github.com/taskgrid/taskgrid/internal/pkg/cryptobox"
	"github.com/taskgrid/taskgrid/internal/pkg/goroutine"
	"github.com/taskgrid/taskgrid/internal/pkg/hash"
	"github.com/taskgrid/taskgrid/internal/pkg/instrument"
	"github.com/taskgrid/taskgrid/internal/pkg/jwt"
	"github.com/taskgrid/taskgrid/internal/pkg/mail"
	"github.com/taskgrid/taskgrid/internal/pkg/messaging"
	"github.com/taskgrid/taskgrid/internal/pkg/router"
	"github.com/taskgrid/taskgrid/internal/pkg/uid"
	"github.com/taskgrid/taskgrid/internal/pkg/validator"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	Cache      cache.Cache                `validate:"required"`
	Sealer     cryptobox.Sealer           `validate:"required"`
	Mailer     mail.Mail                  `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Enforcer   *casbin.Enforcer           `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	OID        uid.StringID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Bcrypt     hash.Hash                  `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	repoDB := db.NewDB(dep.DBConn, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)
	tickets := ticket.NewStore(dep.Cache, dep.Sealer, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:        repoDB,
		RepoMessaging: repoMsg,
		Tickets:       tickets,
		Mailer:        dep.Mailer,
		Validator:     dep.Validator,
		Config:        dep.Config,
		HMAC:          dep.HMAC,
		Bcrypt:        dep.Bcrypt,
		UID:           dep.UID,
		OID:           dep.OID,
		Clock:         dep.Clock,
		JWT:           dep.JWT,
		Instrument:    dep.Instrument,
		Enforcer:      dep.Enforcer,
		Goroutine:     dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
