// Package config defines the necessary types to configure the application.
// An example config file config.yaml is provided in the repository root.
package config

import (
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
)

type Config struct {
	commoncfg.BaseConfig `mapstructure:",squash" yaml:",inline"`

	HTTP HTTPServer `yaml:"http"`

	Commerce Commerce `yaml:"commerce"`
	Content  Content  `yaml:"content"`
	Search   Search   `yaml:"search"`

	Storage  Storage  `yaml:"storage"`
	Database Database `yaml:"database"`
	ValKey   ValKey   `yaml:"valkey"`
	Migrate  Migrate  `yaml:"migrate"`

	Stores      Stores      `yaml:"stores"`
	Housekeeper Housekeeper `yaml:"housekeeper"`
}

type HTTPServer struct {
	Address         string        `yaml:"address" default:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" default:"5s"`
	// ClientCookie identifies the client instance a request belongs to.
	ClientCookie CookieTemplate `yaml:"clientCookie"`
}

type CookieSameSite string

const (
	CookieSameSiteNone   CookieSameSite = "None"
	CookieSameSiteLax    CookieSameSite = "Lax"
	CookieSameSiteStrict CookieSameSite = "Strict"
)

type CookieTemplate struct {
	Name     string         `yaml:"name" default:"storefront_client"`
	MaxAge   int            `yaml:"maxAge" default:"31536000"`
	Path     string         `yaml:"path" default:"/"`
	Domain   string         `yaml:"domain"`
	Secure   bool           `yaml:"secure" default:"true"`
	SameSite CookieSameSite `yaml:"sameSite" default:"Lax"`
	HTTPOnly bool           `yaml:"httpOnly" default:"true"`
}

// Commerce configures the Storefront GraphQL API.
type Commerce struct {
	// Endpoint is the full GraphQL endpoint, e.g.
	// https://shop.myshopify.com/api/2024-01/graphql.json
	Endpoint    string              `yaml:"endpoint"`
	AccessToken commoncfg.SourceRef `yaml:"accessToken"`
	Timeout     time.Duration       `yaml:"timeout" default:"10s"`
}

// Content configures the headless CMS GraphQL API.
type Content struct {
	Endpoint    string              `yaml:"endpoint"`
	AccessToken commoncfg.SourceRef `yaml:"accessToken"`
	Timeout     time.Duration       `yaml:"timeout" default:"10s"`
}

// Search configures the hosted product search index.
type Search struct {
	Endpoint    string              `yaml:"endpoint"`
	AppID       string              `yaml:"appID"`
	APIKey      commoncfg.SourceRef `yaml:"apiKey"`
	Index       string              `yaml:"index" default:"shopify_products"`
	HitsPerPage int                 `yaml:"hitsPerPage" default:"8"`
	Timeout     time.Duration       `yaml:"timeout" default:"5s"`
}

type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverValKey   StorageDriver = "valkey"
	StorageDriverPostgres StorageDriver = "postgres"
)

// Storage selects where client stores persist their keys.
type Storage struct {
	Driver StorageDriver `yaml:"driver" default:"memory"`
}

type Database struct {
	Name     string              `yaml:"name"`
	Port     string              `yaml:"port"`
	Host     commoncfg.SourceRef `yaml:"host"`
	User     commoncfg.SourceRef `yaml:"user"`
	Password commoncfg.SourceRef `yaml:"password"`
}

type ValKey struct {
	Host      commoncfg.SourceRef `yaml:"host"`
	User      commoncfg.SourceRef `yaml:"user"`
	Password  commoncfg.SourceRef `yaml:"password"`
	Prefix    string              `yaml:"prefix" default:"storefront:"`
	SecretRef commoncfg.SecretRef `yaml:"secretRef"`
}

type Stores struct {
	PageSize        int           `yaml:"pageSize" default:"10"`
	CatalogPageSize int           `yaml:"catalogPageSize" default:"12"`
	Language        string        `yaml:"language" default:"en"`
	ClientIdleTTL   time.Duration `yaml:"clientIdleTTL" default:"30m"`
}

// Housekeeper purges persisted client keys nobody has written for longer
// than Retention. It applies to the postgres storage driver.
type Housekeeper struct {
	TriggerInterval time.Duration `yaml:"triggerInterval" default:"1h"`
	Retention       time.Duration `yaml:"retention" default:"720h"`
}

type Migrate struct {
	Source string `yaml:"source" default:"file://./sql"`
}
