// Package config reads the document naming the five weather inputs.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/wdm0006/tidyweather/pkg/tidy"
)

// Keys lists the required keys in the order they are checked.
var Keys = []string{"city_attributes", "humidity", "pressure", "temperature", "weather_description"}

// Inputs holds the path of every input file.
type Inputs struct {
	CityAttributes     string `json:"city_attributes" toml:"city_attributes" yaml:"city_attributes"`
	Humidity           string `json:"humidity" toml:"humidity" yaml:"humidity"`
	Pressure           string `json:"pressure" toml:"pressure" yaml:"pressure"`
	Temperature        string `json:"temperature" toml:"temperature" yaml:"temperature"`
	WeatherDescription string `json:"weather_description" toml:"weather_description" yaml:"weather_description"`
}

// Path returns the path configured under key.
func (in Inputs) Path(key string) string {
	switch key {
	case "city_attributes":
		return in.CityAttributes
	case "humidity":
		return in.Humidity
	case "pressure":
		return in.Pressure
	case "temperature":
		return in.Temperature
	case "weather_description":
		return in.WeatherDescription
	}
	return ""
}

func (in *Inputs) set(key, path string) {
	switch key {
	case "city_attributes":
		in.CityAttributes = path
	case "humidity":
		in.Humidity = path
	case "pressure":
		in.Pressure = path
	case "temperature":
		in.Temperature = path
	case "weather_description":
		in.WeatherDescription = path
	}
}

// Default is the layout used when no configuration is given.
func Default() Inputs {
	var in Inputs
	for _, k := range Keys {
		in.set(k, "data/raw/"+k+".csv")
	}
	return in
}

// DefaultJSON is Default encoded as a configuration document.
func DefaultJSON() string {
	b, _ := json.Marshal(Default())
	return string(b)
}

// Parse decodes a JSON configuration document. Missing or null keys and
// non-string values fail with *tidy.ConfigurationError naming the key;
// malformed JSON fails with a *tidy.ConfigurationError carrying raw.
func Parse(raw string) (Inputs, error) {
	var doc map[string]any
	dec := json.NewDecoder(strings.NewReader(raw))
	if err := dec.Decode(&doc); err != nil {
		return Inputs{}, &tidy.ConfigurationError{Param: "config", Raw: raw, Msg: "invalid JSON format", Err: err}
	}
	if dec.More() {
		return Inputs{}, &tidy.ConfigurationError{Param: "config", Raw: raw, Msg: "invalid JSON format: trailing data"}
	}
	if doc == nil {
		return Inputs{}, &tidy.ConfigurationError{Param: "config", Raw: raw, Msg: "configuration must be a JSON object"}
	}
	return fromMap(doc)
}

// LoadFile reads a configuration document from path. The format follows
// the extension: .json, .toml, .yaml or .yml.
func LoadFile(path string) (Inputs, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Inputs{}, &tidy.NotFoundError{Path: path}
		}
		return Inputs{}, err
	}
	var doc map[string]any
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return Parse(string(b))
	case ".toml":
		err = toml.NewDecoder(bytes.NewReader(b)).Decode(&doc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &doc)
	default:
		return Inputs{}, &tidy.ConfigurationError{Param: "config-file", Raw: path, Msg: fmt.Sprintf("unsupported config format %q", ext)}
	}
	if err != nil {
		return Inputs{}, &tidy.ConfigurationError{Param: "config-file", Raw: path, Msg: "cannot decode config file", Err: err}
	}
	return fromMap(doc)
}

func fromMap(doc map[string]any) (Inputs, error) {
	var in Inputs
	for _, k := range Keys {
		v, ok := doc[k]
		if !ok || v == nil {
			return Inputs{}, &tidy.ConfigurationError{Param: k, Msg: "missing required key"}
		}
		s, ok := v.(string)
		if !ok {
			return Inputs{}, &tidy.ConfigurationError{Param: k, Msg: fmt.Sprintf("expected a string path, got %T", v)}
		}
		if s == "" {
			return Inputs{}, &tidy.ConfigurationError{Param: k, Msg: "empty path"}
		}
		in.set(k, s)
	}
	return in, nil
}
