package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	defaultSlowQueryThreshold = 200 * time.Millisecond
	defaultMaxQueryLength     = 1000
)

// Database type constants
const (
	PostgreSQL = "postgresql"
	Oracle     = "oracle"
	SQLite     = "sqlite"
)

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their koanf path so errors match config.yaml and env names.
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("koanf"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterStructValidation(validateDatabaseSource, DatabaseConfig{})
		validate = v
	})
	return validate
}

// Validate checks cfg and returns the first problem as a *ConfigError.
func Validate(cfg *Config) error {
	err := validatorInstance().Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	return toConfigError(verrs[0])
}

// validateDatabaseSource enforces the rules that depend on database.type.
func validateDatabaseSource(sl validator.StructLevel) {
	db, ok := sl.Current().Interface().(DatabaseConfig)
	if !ok || db.Type == "" || db.ConnectionString != "" {
		return
	}

	switch db.Type {
	case SQLite:
		if db.SQLite.Path == "" {
			sl.ReportError(db.SQLite.Path, "sqlite.path", "Path", "required", "")
		}
	case PostgreSQL, Oracle:
		if db.Host == "" {
			sl.ReportError(db.Host, "host", "Host", "required", "")
		}
		if db.Port == 0 {
			sl.ReportError(db.Port, "port", "Port", "required", "")
		}
		if db.Username == "" {
			sl.ReportError(db.Username, "username", "Username", "required", "")
		}
		if db.Type == PostgreSQL && db.Database == "" {
			sl.ReportError(db.Database, "database", "Database", "required", "")
		}
		if db.Type == Oracle && db.Oracle.ServiceName == "" && db.Oracle.SID == "" && db.Database == "" {
			sl.ReportError(db.Oracle.ServiceName, "oracle.servicename", "ServiceName", "required", "")
		}
	}
}

func toConfigError(fe validator.FieldError) *ConfigError {
	field := fieldPath(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return NewMissingFieldError(field)
	case "oneof":
		return NewInvalidFieldError(field, fmt.Sprintf("invalid value %q", fmt.Sprint(fe.Value())), strings.Fields(fe.Param()))
	case "gte", "lte":
		return NewInvalidFieldError(field, fmt.Sprintf("value %v out of range (%s %s)", fe.Value(), fe.Tag(), fe.Param()), nil)
	default:
		return NewInvalidFieldError(field, fmt.Sprintf("failed %s validation", fe.Tag()), nil)
	}
}

// fieldPath drops the root struct name: "Config.database.host" becomes "database.host".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
