package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/knadh/koanf"
)

func TestConfigDefaults(t *testing.T) {
	k = koanf.New(".")
	ConfigFileName = filepath.Join(t.TempDir(), "lnhrdacsrv.yml")
	setupconfig()
	c := Config{}
	if err := k.Unmarshal("", &c); err != nil {
		t.Fatal(err)
	}
	if c.Addr != ":8000" {
		t.Errorf("default Addr is %q", c.Addr)
	}
	if c.DACAddr != "192.168.0.5:23" {
		t.Errorf("default DACAddr is %q", c.DACAddr)
	}
	if c.Serial {
		t.Error("Serial defaults to true")
	}
}

func TestConfigFileOverridesDefaults(t *testing.T) {
	k = koanf.New(".")
	ConfigFileName = filepath.Join(t.TempDir(), "lnhrdacsrv.yml")
	body := "Addr: \":9000\"\nSerial: true\n"
	if err := os.WriteFile(ConfigFileName, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	setupconfig()
	c := Config{}
	if err := k.Unmarshal("", &c); err != nil {
		t.Fatal(err)
	}
	if c.Addr != ":9000" {
		t.Errorf("Addr is %q after override", c.Addr)
	}
	if !c.Serial {
		t.Error("Serial override did not take")
	}
	// keys absent from the file keep their defaults
	if c.DACAddr != "192.168.0.5:23" {
		t.Errorf("DACAddr is %q, default should survive a partial file", c.DACAddr)
	}
}
