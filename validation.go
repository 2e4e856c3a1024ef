package execlog

import (
	"sync"

	smerrors "github.com/Station-Manager/errors"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate
var once sync.Once

func validateConfig(cfg *Config) error {
	const op smerrors.Op = "execlog.validateConfig"
	if cfg == nil {
		return smerrors.New(op).Msg(errMsgNilConfig)
	}

	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})

	if err := validate.Struct(cfg); err != nil {
		return smerrors.New(op).Err(err).Msg(errMsgConfigInvalid)
	}
	if _, err := ParseSeverity(cfg.Level); err != nil {
		return smerrors.New(op).Err(err).Msg(errMsgConfigInvalid)
	}

	return nil
}
