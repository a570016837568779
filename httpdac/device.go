package httpdac

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"

	"github.com/baspi-lab/lnhrdac2/lnhrdac2"
)

// HTTPDevice wraps a Device in a route table covering the channels,
// generators, SWG and 2D scan.
type HTTPDevice struct {
	d *lnhrdac2.Device

	// RouteTable is exported so extra routes can be added before Bind.
	RouteTable RouteTable
}

// NewHTTPDevice builds the route table for d.
func NewHTTPDevice(d *lnhrdac2.Device) *HTTPDevice {
	h := &HTTPDevice{d: d, RouteTable: RouteTable{}}
	h.bindDevice()
	h.bindChannels()
	h.bindGenerators()
	h.bindSWG()
	h.bindScan()
	return h
}

// Bind attaches all routes to r.
func (h *HTTPDevice) Bind(r chi.Router) {
	h.RouteTable.Bind(r)
}

func (h *HTTPDevice) get(path string, fn http.HandlerFunc) {
	h.RouteTable[MethodPath{Method: http.MethodGet, Path: path}] = fn
}

func (h *HTTPDevice) post(path string, fn http.HandlerFunc) {
	h.RouteTable[MethodPath{Method: http.MethodPost, Path: path}] = fn
}

func (h *HTTPDevice) bindDevice() {
	h.get("/idn", func(w http.ResponseWriter, r *http.Request) {
		idn, err := h.d.IDN()
		if err != nil {
			httpError(w, err)
			return
		}
		respondJSON(w, idn)
	})
	h.get("/health", GetString(h.d.Health))
	h.get("/num-channels", GetInt(func() (int, error) { return h.d.NumChannels, nil }))
	h.post("/raw", func(w http.ResponseWriter, r *http.Request) {
		s := StrT{}
		err := json.NewDecoder(r.Body).Decode(&s)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp, err := h.d.Controller().Ask(s.Str)
		if err != nil {
			httpError(w, err)
			return
		}
		respondJSON(w, StrT{Str: resp})
	})
}

// channel pulls the channel out of the URL, writing the HTTP error
// itself when it is absent or out of range.
func (h *HTTPDevice) channel(w http.ResponseWriter, r *http.Request) *lnhrdac2.Channel {
	num, err := strconv.Atoi(chi.URLParam(r, "channel"))
	if err != nil {
		http.Error(w, "channel must be an integer", http.StatusBadRequest)
		return nil
	}
	ch := h.d.Channel(num)
	if ch == nil {
		http.Error(w, fmt.Sprintf("channel %d does not exist on this %d channel device",
			num, h.d.NumChannels), http.StatusNotFound)
	}
	return ch
}

func (h *HTTPDevice) bindChannels() {
	h.get("/channel/{channel}/voltage", func(w http.ResponseWriter, r *http.Request) {
		if ch := h.channel(w, r); ch != nil {
			GetFloat(ch.Voltage)(w, r)
		}
	})
	h.post("/channel/{channel}/voltage", func(w http.ResponseWriter, r *http.Request) {
		if ch := h.channel(w, r); ch != nil {
			SetFloat(ch.SetVoltage)(w, r)
		}
	})
	h.get("/channel/{channel}/registered-voltage", func(w http.ResponseWriter, r *http.Request) {
		if ch := h.channel(w, r); ch != nil {
			GetFloat(ch.RegisteredVoltage)(w, r)
		}
	})
	h.get("/channel/{channel}/enabled", func(w http.ResponseWriter, r *http.Request) {
		if ch := h.channel(w, r); ch != nil {
			GetBool(ch.Enabled)(w, r)
		}
	})
	h.post("/channel/{channel}/enabled", func(w http.ResponseWriter, r *http.Request) {
		if ch := h.channel(w, r); ch != nil {
			SetBool(ch.SetEnabled)(w, r)
		}
	})
	h.get("/channel/{channel}/high-bandwidth", func(w http.ResponseWriter, r *http.Request) {
		if ch := h.channel(w, r); ch != nil {
			GetBool(ch.HighBandwidth)(w, r)
		}
	})
	h.post("/channel/{channel}/high-bandwidth", func(w http.ResponseWriter, r *http.Request) {
		if ch := h.channel(w, r); ch != nil {
			SetBool(ch.SetHighBandwidth)(w, r)
		}
	})
	h.get("/channel/{channel}/mode", func(w http.ResponseWriter, r *http.Request) {
		if ch := h.channel(w, r); ch != nil {
			GetString(ch.Mode)(w, r)
		}
	})

	// whole-device group, one firmware command per request
	h.get("/channels/voltage", GetFloats(h.d.All.Voltages))
	h.post("/channels/voltage", SetFloat(h.d.All.SetVoltage))
	h.get("/channels/registered-voltage", GetFloats(h.d.All.RegisteredVoltages))
	h.post("/channels/enabled", SetBool(h.d.All.SetEnabled))
	h.post("/channels/high-bandwidth", SetBool(h.d.All.SetHighBandwidth))
	h.get("/channels/mode", func(w http.ResponseWriter, r *http.Request) {
		modes, err := h.d.All.Modes()
		if err != nil {
			httpError(w, err)
			return
		}
		respondJSON(w, modes)
	})
}

// generator pulls the designator out of the URL.
func (h *HTTPDevice) generator(w http.ResponseWriter, r *http.Request) (lnhrdac2.Designator, bool) {
	d := lnhrdac2.Designator(strings.ToUpper(chi.URLParam(r, "gen")))
	if _, ok := h.d.AWGs[d]; !ok {
		http.Error(w, fmt.Sprintf("generator %q does not exist on this device", string(d)),
			http.StatusNotFound)
		return d, false
	}
	return d, true
}

func (h *HTTPDevice) bindGenerators() {
	awg := func(path string, fn func(*lnhrdac2.AWG) http.HandlerFunc) {
		h.RouteTable[MethodPath{Method: http.MethodGet, Path: "/awg/{gen}" + path}] = func(w http.ResponseWriter, r *http.Request) {
			if d, ok := h.generator(w, r); ok {
				fn(h.d.AWGs[d])(w, r)
			}
		}
	}
	awgPost := func(path string, fn func(*lnhrdac2.AWG) http.HandlerFunc) {
		h.RouteTable[MethodPath{Method: http.MethodPost, Path: "/awg/{gen}" + path}] = func(w http.ResponseWriter, r *http.Request) {
			if d, ok := h.generator(w, r); ok {
				fn(h.d.AWGs[d])(w, r)
			}
		}
	}

	awg("/waveform", func(a *lnhrdac2.AWG) http.HandlerFunc { return GetFloats(a.Waveform) })
	awgPost("/waveform", func(a *lnhrdac2.AWG) http.HandlerFunc { return SetFloats(a.SetWaveform) })
	awgPost("/start", func(a *lnhrdac2.AWG) http.HandlerFunc { return Trigger(a.Start) })
	awgPost("/stop", func(a *lnhrdac2.AWG) http.HandlerFunc { return Trigger(a.Stop) })
	awg("/running", func(a *lnhrdac2.AWG) http.HandlerFunc { return GetBool(a.Running) })
	awg("/channel", func(a *lnhrdac2.AWG) http.HandlerFunc { return GetInt(a.Channel) })
	awgPost("/channel", func(a *lnhrdac2.AWG) http.HandlerFunc { return SetInt(a.SetChannel) })
	awg("/cycles", func(a *lnhrdac2.AWG) http.HandlerFunc { return GetInt(a.Cycles) })
	awgPost("/cycles", func(a *lnhrdac2.AWG) http.HandlerFunc { return SetInt(a.SetCycles) })
	awg("/clock-period", func(a *lnhrdac2.AWG) http.HandlerFunc { return GetInt(a.ClockPeriod) })
	awgPost("/clock-period", func(a *lnhrdac2.AWG) http.HandlerFunc { return SetInt(a.SetClockPeriod) })
	awg("/cycle-duration", func(a *lnhrdac2.AWG) http.HandlerFunc { return GetFloat(a.CycleDuration) })
	awg("/trigger-mode", func(a *lnhrdac2.AWG) http.HandlerFunc {
		return GetInt(func() (int, error) {
			m, err := a.TriggerMode()
			return int(m), err
		})
	})
	awgPost("/trigger-mode", func(a *lnhrdac2.AWG) http.HandlerFunc {
		return SetInt(func(i int) error { return a.SetTriggerMode(lnhrdac2.TriggerMode(i)) })
	})
	awg("/polynomial", func(a *lnhrdac2.AWG) http.HandlerFunc { return GetFloats(a.Polynomial) })
	awgPost("/polynomial", func(a *lnhrdac2.AWG) http.HandlerFunc { return SetFloats(a.SetPolynomial) })

	ramp := func(path string, fn func(*lnhrdac2.Ramp) http.HandlerFunc) {
		h.RouteTable[MethodPath{Method: http.MethodGet, Path: "/ramp/{gen}" + path}] = func(w http.ResponseWriter, r *http.Request) {
			if d, ok := h.generator(w, r); ok {
				fn(h.d.Ramps[d])(w, r)
			}
		}
	}
	rampPost := func(path string, fn func(*lnhrdac2.Ramp) http.HandlerFunc) {
		h.RouteTable[MethodPath{Method: http.MethodPost, Path: "/ramp/{gen}" + path}] = func(w http.ResponseWriter, r *http.Request) {
			if d, ok := h.generator(w, r); ok {
				fn(h.d.Ramps[d])(w, r)
			}
		}
	}

	rampPost("/start", func(g *lnhrdac2.Ramp) http.HandlerFunc { return Trigger(g.Start) })
	rampPost("/stop", func(g *lnhrdac2.Ramp) http.HandlerFunc { return Trigger(g.Stop) })
	rampPost("/hold", func(g *lnhrdac2.Ramp) http.HandlerFunc { return Trigger(g.Hold) })
	ramp("/state", func(g *lnhrdac2.Ramp) http.HandlerFunc {
		return GetString(func() (string, error) {
			s, err := g.State()
			return s.String(), err
		})
	})
	ramp("/channel", func(g *lnhrdac2.Ramp) http.HandlerFunc { return GetInt(g.Channel) })
	rampPost("/channel", func(g *lnhrdac2.Ramp) http.HandlerFunc { return SetInt(g.SetChannel) })
	ramp("/start-voltage", func(g *lnhrdac2.Ramp) http.HandlerFunc { return GetFloat(g.StartVoltage) })
	rampPost("/start-voltage", func(g *lnhrdac2.Ramp) http.HandlerFunc { return SetFloat(g.SetStartVoltage) })
	ramp("/peak-voltage", func(g *lnhrdac2.Ramp) http.HandlerFunc { return GetFloat(g.PeakVoltage) })
	rampPost("/peak-voltage", func(g *lnhrdac2.Ramp) http.HandlerFunc { return SetFloat(g.SetPeakVoltage) })
	ramp("/duration", func(g *lnhrdac2.Ramp) http.HandlerFunc { return GetFloat(g.Duration) })
	rampPost("/duration", func(g *lnhrdac2.Ramp) http.HandlerFunc { return SetFloat(g.SetDuration) })
	ramp("/shape", func(g *lnhrdac2.Ramp) http.HandlerFunc { return GetInt(g.Shape) })
	rampPost("/shape", func(g *lnhrdac2.Ramp) http.HandlerFunc { return SetInt(g.SetShape) })
	ramp("/cycles", func(g *lnhrdac2.Ramp) http.HandlerFunc { return GetInt(g.Cycles) })
	rampPost("/cycles", func(g *lnhrdac2.Ramp) http.HandlerFunc { return SetInt(g.SetCycles) })
	ramp("/cycles-done", func(g *lnhrdac2.Ramp) http.HandlerFunc { return GetInt(g.CyclesDone) })
	ramp("/steps-done", func(g *lnhrdac2.Ramp) http.HandlerFunc { return GetInt(g.StepsDone) })
}

func (h *HTTPDevice) bindSWG() {
	h.post("/swg/configure", func(w http.ResponseWriter, r *http.Request) {
		cfg := lnhrdac2.DefaultSWGConfig()
		err := json.NewDecoder(r.Body).Decode(&cfg)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := h.d.SWG.Configure(cfg); err != nil {
			httpError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	h.post("/swg/apply/{gen}", func(w http.ResponseWriter, r *http.Request) {
		d, ok := h.generator(w, r)
		if !ok {
			return
		}
		if err := h.d.SWG.Apply(h.d.AWGs[d]); err != nil {
			httpError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}

func (h *HTTPDevice) bindScan() {
	h.post("/scan2d/configure", func(w http.ResponseWriter, r *http.Request) {
		cfg := lnhrdac2.DefaultScan2DConfig()
		err := json.NewDecoder(r.Body).Decode(&cfg)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := h.d.Scan.Configure(cfg); err != nil {
			httpError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	h.get("/scan2d/state", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, StrT{Str: h.d.Scan.State().String()})
	})
	h.post("/scan2d/trigger", SetString(h.d.Scan.SetTrigger))
	h.get("/scan2d/trigger-channel", GetInt(h.d.Scan.TriggerChannel))
	h.post("/scan2d/trigger-channel", SetInt(h.d.Scan.SetTriggerChannel))
	h.get("/scan2d/x-axis", GetFloats(h.d.Scan.XAxis))
	h.get("/scan2d/y-axis", GetFloats(h.d.Scan.YAxis))
	h.post("/scan2d/enable", SetBool(h.d.Scan.Enable))
	h.get("/scan2d/progress", func(w http.ResponseWriter, r *http.Request) {
		steps, finished, err := h.d.Scan.Progress()
		if err != nil {
			httpError(w, err)
			return
		}
		respondJSON(w, struct {
			Steps    int  `json:"steps"`
			Finished bool `json:"finished"`
		}{steps, finished})
	})
}
