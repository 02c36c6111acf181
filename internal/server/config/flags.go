package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/staticstore/internal/flagx"
)

var allowedFlags = []string{"-a", "-d", "-s", "-u", "-p", "-b", "-g", "-e", "-k", "-o", "-f", "-l", "-r", "-w", "-j", "-t"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   access token HMAC secret
//	-u string   S3 access key id
//	-p string   S3 secret access key
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (empty for AWS)
//	-k string   S3 driver: aws | minio | memory
//	-o string   public S3 host for object URLs
//	-f string   CloudFront domain
//	-l string   large-file uploader page URL
//	-r string   root directory of local folders
//	-w string   public base URL of this server
//	-j string   OTLP/HTTP trace endpoint
//	-t int      shutdown timeout, seconds
//
// Only the flags above are looked at (flagx.FilterArgs), so -c/-config and
// unknown flags pass through untouched.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], allowedFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key id")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret access key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3Driver, "k", config.S3Driver, "S3 driver (aws|minio|memory)")
	fs.StringVar(&config.S3PublicHost, "o", config.S3PublicHost, "public S3 host")
	fs.StringVar(&config.CloudFrontDomain, "f", config.CloudFrontDomain, "CloudFront domain")

	fs.StringVar(&config.UploaderURL, "l", config.UploaderURL, "large file uploader URL")
	fs.StringVar(&config.LocalRoot, "r", config.LocalRoot, "local folders root")
	fs.StringVar(&config.PublicBaseURL, "w", config.PublicBaseURL, "public base URL")
	fs.StringVar(&config.TraceEndpoint, "j", config.TraceEndpoint, "OTLP trace endpoint")

	shutdownTimeout := fs.Int("t", int(config.ShutdownTimeout.Seconds()), "shutdown timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.ShutdownTimeout = time.Duration(*shutdownTimeout) * time.Second
}
