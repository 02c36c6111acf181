package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/staticstore/internal/flagx"
	"github.com/dmitrijs2005/staticstore/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Only keys that
// are present override the current values.
type JsonConfig struct {
	EndpointAddrHTTP string          `json:"endpoint_addr_http"`
	DatabaseDSN      string          `json:"database_dsn"`
	SecretKey        string          `json:"secret_key"`
	S3AccessKey      string          `json:"s3_access_key"`
	S3SecretKey      string          `json:"s3_secret_key"`
	S3Bucket         string          `json:"s3_bucket"`
	S3Region         string          `json:"s3_region"`
	S3BaseEndpoint   *string         `json:"s3_base_endpoint"`
	S3Driver         string          `json:"s3_driver"`
	S3PublicHost     string          `json:"s3_public_host"`
	CloudFrontDomain *string         `json:"cloudfront_domain"`
	UploaderURL      string          `json:"uploader_url"`
	LocalRoot        string          `json:"local_root"`
	PublicBaseURL    string          `json:"public_base_url"`
	TraceEndpoint    *string         `json:"trace_endpoint"`
	ShutdownTimeout  *timex.Duration `json:"shutdown_timeout"`
}

// parseJson overlays values from the JSON file named by -c/-config (or
// $STATICSTORE_CONFIG). Nothing happens when no file is named. An unreadable
// or malformed file panics: the process cannot start with a config it
// cannot read.
//
// Optional endpoints are pointers so that a file can clear them with "".
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath()

	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3Driver, c.S3Driver)
	setString(&config.S3PublicHost, c.S3PublicHost)
	setString(&config.UploaderURL, c.UploaderURL)
	setString(&config.LocalRoot, c.LocalRoot)
	setString(&config.PublicBaseURL, c.PublicBaseURL)

	if c.S3BaseEndpoint != nil {
		config.S3BaseEndpoint = *c.S3BaseEndpoint
	}
	if c.CloudFrontDomain != nil {
		config.CloudFrontDomain = *c.CloudFrontDomain
	}
	if c.TraceEndpoint != nil {
		config.TraceEndpoint = *c.TraceEndpoint
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
