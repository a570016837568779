// Package httpdac exposes an LNHR DAC II over HTTP, one route per
// device parameter, with small JSON payloads.
package httpdac

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/baspi-lab/lnhrdac2/lnhrdac2"
)

// FloatT is a struct holding a single float64 value, used for JSON I/O
type FloatT struct {
	F64 float64 `json:"f64"`
}

// IntT is like FloatT but for an int
type IntT struct {
	Int int `json:"int"`
}

// BoolT is like FloatT but for a bool
type BoolT struct {
	Bool bool `json:"bool"`
}

// StrT is like FloatT but for a string
type StrT struct {
	Str string `json:"str"`
}

// FloatsT is like FloatT but for a slice of float64, used for waveforms
type FloatsT struct {
	F64s []float64 `json:"f64s"`
}

// MethodPath is a route fragment, the URL and HTTP verb used to access it
type MethodPath struct {
	Method string
	Path   string
}

// RouteTable maps method-paths to handlers
type RouteTable map[MethodPath]http.HandlerFunc

// Bind attaches each route in the table to a chi router
func (rt RouteTable) Bind(r chi.Router) {
	for mp, handler := range rt {
		r.Method(mp.Method, mp.Path, handler)
	}
}

// Endpoints lists the route fragments in the table
func (rt RouteTable) Endpoints() []MethodPath {
	out := make([]MethodPath, 0, len(rt))
	for mp := range rt {
		out = append(out, mp)
	}
	return out
}

// httpError maps driver errors onto HTTP status codes.  Advisory lock
// rejections become 423 so clients can tell "busy" from "broken";
// validation failures become 400 before anything touched the device.
func httpError(w http.ResponseWriter, err error) {
	var code int
	switch err.(type) {
	case lnhrdac2.LockedError:
		code = http.StatusLocked
	case lnhrdac2.RangeError, lnhrdac2.ChoiceError:
		code = http.StatusBadRequest
	case lnhrdac2.ResourceExhaustedError, lnhrdac2.ChannelUnavailableError:
		code = http.StatusConflict
	default:
		code = http.StatusInternalServerError
	}
	http.Error(w, err.Error(), code)
}

func respondJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetFloat wraps a float getter as a handler returning {"f64": value}
func GetFloat(fcn func() (float64, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := fcn()
		if err != nil {
			httpError(w, err)
			return
		}
		respondJSON(w, FloatT{F64: f})
	}
}

// SetFloat wraps a float setter, parsing {"f64": value} from the body
func SetFloat(fcn func(float64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := FloatT{}
		err := json.NewDecoder(r.Body).Decode(&f)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := fcn(f.F64); err != nil {
			httpError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// GetInt wraps an int getter as a handler returning {"int": value}
func GetInt(fcn func() (int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		i, err := fcn()
		if err != nil {
			httpError(w, err)
			return
		}
		respondJSON(w, IntT{Int: i})
	}
}

// SetInt wraps an int setter, parsing {"int": value} from the body
func SetInt(fcn func(int) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		i := IntT{}
		err := json.NewDecoder(r.Body).Decode(&i)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := fcn(i.Int); err != nil {
			httpError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// GetBool wraps a bool getter as a handler returning {"bool": value}
func GetBool(fcn func() (bool, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := fcn()
		if err != nil {
			httpError(w, err)
			return
		}
		respondJSON(w, BoolT{Bool: b})
	}
}

// SetBool wraps a bool setter, parsing {"bool": value} from the body
func SetBool(fcn func(bool) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b := BoolT{}
		err := json.NewDecoder(r.Body).Decode(&b)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := fcn(b.Bool); err != nil {
			httpError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// GetString wraps a string getter as a handler returning {"str": value}
func GetString(fcn func() (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := fcn()
		if err != nil {
			httpError(w, err)
			return
		}
		respondJSON(w, StrT{Str: s})
	}
}

// SetString wraps a string setter, parsing {"str": value} from the body
func SetString(fcn func(string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := StrT{}
		err := json.NewDecoder(r.Body).Decode(&s)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := fcn(s.Str); err != nil {
			httpError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// GetFloats wraps a waveform getter as a handler returning {"f64s": [...]}
func GetFloats(fcn func() ([]float64, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fs, err := fcn()
		if err != nil {
			httpError(w, err)
			return
		}
		respondJSON(w, FloatsT{F64s: fs})
	}
}

// SetFloats wraps a waveform setter, parsing {"f64s": [...]} from the body
func SetFloats(fcn func([]float64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fs := FloatsT{}
		err := json.NewDecoder(r.Body).Decode(&fs)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := fcn(fs.F64s); err != nil {
			httpError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// Trigger wraps a nullary action, e.g. start or stop
func Trigger(fcn func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fcn(); err != nil {
			httpError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
