package fields

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
)

type ErrorResponse struct {
	ErrorDetails
}

// BadRequest is the status string of validation error payloads.
const BadRequest = "BadRequest"

type ErrorDetails struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Status  string      `json:"status"`
	Details interface{} `json:"details"`
}

type ErrDetails map[string]interface{}

func ErrorToString(e validator.FieldError) ErrDetails {
	err := make(map[string]interface{})

	switch e.Tag() {
	case "required":
		err[e.Field()] = "this field is required"
		return err
	case "max":
		err[e.Field()] = fmt.Sprintf("this field cannot be longer than %s", e.Param())
		return err
	case "min":
		err[e.Field()] = fmt.Sprintf("this field must be longer than %s", e.Param())
		return err
	case "gte":
		err[e.Field()] = fmt.Sprintf("this field must be at least %s", e.Param())
		return err
	case "lte":
		err[e.Field()] = fmt.Sprintf("this field cannot exceed %s", e.Param())
		return err
	case "gt":
		err[e.Field()] = fmt.Sprintf("this field must be greater than %s", e.Param())
		return err
	case "len":
		err[e.Field()] = fmt.Sprintf("this field must be %s characters long", e.Param())
		return err
	default:
		err[e.Field()] = fmt.Sprintf("%s is not valid", e.Field())
	}

	return err
}

// GenerateIRRequest is the body of POST /generate-ir. Bands stays untyped so
// numbers and integral strings both coerce; BandInts does the reading.
type GenerateIRRequest struct {
	Site      string   `json:"site"`
	Bands     []any    `json:"bands"`
	FmaxHz    *float64 `json:"fmax_hz"`
	ModesTopN *int     `json:"modes_top_n"`
}

// BandInts coerces the bands list to integers. Floats truncate, integral
// strings parse, booleans count as 0/1; anything else fails.
func (r *GenerateIRRequest) BandInts() ([]int, bool) {
	if r.Bands == nil {
		return nil, true
	}
	out := make([]int, 0, len(r.Bands))
	for _, b := range r.Bands {
		switch v := b.(type) {
		case float64:
			out = append(out, int(v))
		case string:
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, false
			}
			out = append(out, int(n))
		case bool:
			if v {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}
		default:
			return nil, false
		}
	}
	return out, true
}

// RenderIRRequest is the body of POST /render-ir.
type RenderIRRequest struct {
	Site         string   `json:"site"`
	SampleRateHz *int     `json:"sample_rate_hz" binding:"omitempty,gte=8000,lte=48000"`
	DurationS    *float64 `json:"duration_s" binding:"omitempty,gt=0"`
	Seed         *int64   `json:"seed"`
}

// LoginRequest is the dashboard admin login body.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	OTP      string `json:"otp"`
}
