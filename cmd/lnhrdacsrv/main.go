// Command lnhrdacsrv exposes an LNHR DAC II over HTTP, so experiment
// clients in any language can drive it without speaking the device's
// raw ASCII protocol.
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	yml "gopkg.in/yaml.v2"

	"github.com/baspi-lab/lnhrdac2/httpdac"
	"github.com/baspi-lab/lnhrdac2/httpdac/locker"
	"github.com/baspi-lab/lnhrdac2/lnhrdac2"
)

var (
	// Version is the version number.  Typically injected via ldflags with git build
	Version = "1"

	// ConfigFileName is what it sounds like
	ConfigFileName = "lnhrdacsrv.yml"
	k              = koanf.New(".")
)

// Config describes the server and the instrument it fronts
type Config struct {
	// Addr is the address (host:port) the HTTP server listens on
	Addr string `yaml:"Addr"`

	// DACAddr is the instrument address, host:port for Telnet or a
	// serial device path
	DACAddr string `yaml:"DACAddr"`

	// Serial selects the RS-232 port instead of the Telnet socket
	Serial bool `yaml:"Serial"`
}

func setupconfig() {
	k.Load(structs.Provider(Config{
		Addr:    ":8000",
		DACAddr: "192.168.0.5:23"}, "koanf"), nil)
	if err := k.Load(file.Provider(ConfigFileName), yaml.Parser()); err != nil {
		errtxt := err.Error()
		if !strings.Contains(errtxt, "no such") { // file missing, who cares
			log.Fatalf("error loading config: %v", err)
		}
	}
}

func root() {
	str := `lnhrdacsrv exposes a Basel Precision Instruments LNHR DAC II over HTTP.
This enables a server-client architecture, and the clients can leverage the
excellent HTTP libraries for any programming language.

Usage:
	lnhrdacsrv <command>

Commands:
	run
	help
	mkconf
	conf
	version`
	fmt.Println(str)
}

func help() {
	str := `lnhrdacsrv is amenable to configuration via its .yaml file.  For a primer on YAML, see
https://yaml.org/start.html

DACAddr is the address of the instrument, <ip>:23 for the built-in
Telnet server or a serial device path with Serial: true.

Every device parameter is one route; GET reads, POST writes.  POST
/lock with {"bool": true} to reserve the instrument for an experiment;
mutating requests are bounced with 423 until unlocked, reads always
pass.  POST /raw sends one raw protocol line for anything the typed
surface does not cover.`
	fmt.Println(str)
}

func mkconf() {
	c := Config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	f, err := os.Create(ConfigFileName)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	err = yml.NewEncoder(f).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func printconf() {
	c := Config{}
	k.Unmarshal("", &c)
	err := yml.NewEncoder(os.Stdout).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func pversion() {
	fmt.Printf("lnhrdacsrv version %v\n", Version)
}

func run() {
	c := Config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("connecting to LNHR DAC II at %s", c.DACAddr)
	dac, err := lnhrdac2.New(c.DACAddr, c.Serial)
	if err != nil {
		log.Fatal("could not connect to the DAC: ", err)
	}
	idn, err := dac.IDN()
	if err != nil {
		log.Fatal("DAC connected but identification failed: ", err)
	}
	log.Printf("connected: %s, serial %s, firmware %s", idn.Model, idn.Serial, idn.Firmware)

	httpD := httpdac.NewHTTPDevice(dac)
	lock := locker.New()
	locker.Inject(httpD.RouteTable, lock)
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(lock.Check)
	httpD.Bind(r)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		dac.Scan.Enable(false)
		dac.Close()
		os.Exit(0)
	}()
	log.Printf("LNHR DAC II available via HTTP at %s", c.Addr)
	log.Fatal(http.ListenAndServe(c.Addr, r))
}

func main() {
	setupconfig()
	if len(os.Args) == 1 {
		root()
		return
	}
	switch os.Args[1] {
	case "help":
		help()
	case "run":
		run()
	case "mkconf":
		mkconf()
	case "conf":
		printconf()
	case "version":
		pversion()
	default:
		root()
	}
}
