package config

import (
	"encoding/xml"
	"fmt"
	"log"
	"os"
	"time"
)

var MainConfig Config

type Config struct {
	XMLName    xml.Name `xml:"config"`
	MainRouter string   `xml:"MainRouter"`
	Download   string   `xml:"download"`

	// database: "sqlite" (default) or "postgres"
	Driver   string `xml:"driver"`
	Dbname   string `xml:"dbname"`
	Host     string `xml:"host"`
	Port     string `xml:"port"`
	Username string `xml:"user"`
	Password string `xml:"password"`

	EPSG          int     `xml:"epsg"`
	TargetEPSG    int     `xml:"targetEpsg"`
	PrjWKT        string  `xml:"prjWkt"`
	DBFEncoding   string  `xml:"dbfEncoding"`
	OutputWidthMM float64 `xml:"outputWidthMM"`

	ServiceURL        string `xml:"serviceUrl"`
	PlacesURL         string `xml:"placesUrl"`
	ReferenceLayerURL string `xml:"referenceLayerUrl"`
	APIKey            string `xml:"apiKey"`
	CacheTTL          int    `xml:"cacheTtl"`
	Timeout           int    `xml:"timeout"`
}

// Defaults fills every empty field. The API key may also come from
// SITEMEASURE_API_KEY so it can stay out of config.xml.
func (c *Config) Defaults() {
	if c.MainRouter == "" {
		c.MainRouter = ":8426"
	}
	if c.Download == "" {
		c.Download = "./data"
	}
	if c.Driver == "" {
		c.Driver = "sqlite"
	}
	if c.Dbname == "" {
		c.Dbname = "sitemeasure"
	}
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == "" {
		c.Port = "5432"
	}
	if c.EPSG == 0 {
		c.EPSG = 27700
	}
	if c.DBFEncoding == "" {
		c.DBFEncoding = "UTF-8"
	}
	if c.OutputWidthMM <= 0 {
		c.OutputWidthMM = 200
	}
	if c.ServiceURL == "" {
		c.ServiceURL = "https://api.os.uk/maps/vector/v1/vts"
	}
	if c.PlacesURL == "" {
		c.PlacesURL = "https://api.os.uk/search/places/v1/postcode"
	}
	if key := os.Getenv("SITEMEASURE_API_KEY"); key != "" {
		c.APIKey = key
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 600
	}
	if c.Timeout <= 0 {
		c.Timeout = 30
	}
}

func (c *Config) CacheDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// DSN is the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.Host, c.Username, c.Password, c.Dbname, c.Port)
}

// Load decodes path into MainConfig. A missing file leaves the defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	xmlFile, err := os.Open(path)
	switch {
	case os.IsNotExist(err):
		log.Printf("config: %s not found, using defaults", path)
	case err != nil:
		return nil, err
	default:
		defer xmlFile.Close()
		if err := xml.NewDecoder(xmlFile).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	cfg.Defaults()
	MainConfig = cfg
	return &cfg, nil
}
