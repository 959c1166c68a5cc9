// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/navwar/goicon/pkg/fs"
	"github.com/navwar/goicon/pkg/icon"
	"github.com/navwar/goicon/pkg/log"
	"github.com/navwar/goicon/pkg/s3fs"
	"github.com/navwar/goicon/pkg/ts"
)

const (
	GoIconVersion = "0.0.1"
)

// AWS Flags
const (
	// Profile
	flagAWSProfile       = "aws-profile"
	flagAWSDefaultRegion = "aws-default-region"
	flagAWSRegion        = "aws-region"
	// Credentials
	flagAWSAccessKeyID     = "aws-access-key-id"
	flagAWSSecretAccessKey = "aws-secret-access-key"
	flagAWSSessionToken    = "aws-session-token"
	// Client
	flagAWSRetryMaxAttempts = "aws-retry-max-attempts"
	// TLS
	flagAWSInsecureSkipVerify = "aws-insecure-skip-verify"
	// Miscellaneous
	flagAWSS3Endpoint     = "aws-s3-endpoint"
	flagAWSS3UsePathStyle = "aws-s3-use-path-style"
	flagBucketKeyEnabled  = "aws-bucket-key-enabled"
)

// Config Flags
const (
	flagConfig = "config"
	flagDebug  = "debug"
)

// Copy Flags
const (
	flagAnchor      = "anchor"
	flagSource      = "source"
	flagDestination = "destination"
	flagParents     = "parents"
	flagThreads     = "threads"
)

// Log Flags
const (
	flagLogPath            = "log-path"
	flagLogPerm            = "log-perm"
	flagLogTimeLayout      = "log-time-layout"
	flagLogTimeZone        = "log-time-zone"
	flagLogClientSigning   = "log-client-signing"
	flagLogClientRequests  = "log-client-requests"
	flagLogClientResponses = "log-client-responses"
	flagLogClientRetries   = "log-client-retries"
)

// Exit Codes
const (
	exitCodeError            = 1
	exitCodeFileNotFound     = 3
	exitCodePermissionDenied = 4
	exitCodeIOFailure        = 5
)

func initAWSFlags(flag *pflag.FlagSet) {
	// Profile
	flag.String(flagAWSProfile, "default", "AWS shared config profile used when reading or writing s3:// paths")
	flag.String(flagAWSDefaultRegion, "", "region of the S3 bucket when --aws-region is not set")
	flag.String(flagAWSRegion, "", "region of the S3 bucket, takes precedence over --aws-default-region")
	// Credentials
	flag.String(flagAWSAccessKeyID, "", "access key id for S3, instead of the shared credentials file")
	flag.String(flagAWSSecretAccessKey, "", "secret access key paired with --aws-access-key-id")
	flag.String(flagAWSSessionToken, "", "session token for temporary S3 credentials")
	// Client
	flag.Int(flagAWSRetryMaxAttempts, 5, "attempts per S3 request before a retryable error is returned")
	// TLS
	flag.Bool(flagAWSInsecureSkipVerify, false, "do not verify the TLS certificate of the S3 endpoint")
	// Miscellaneous
	flag.String(flagAWSS3Endpoint, "", "custom S3 endpoint, such as a local MinIO server")
	flag.Bool(flagAWSS3UsePathStyle, false, "address buckets as endpoint/bucket rather than bucket.endpoint")
	flag.Bool(flagBucketKeyEnabled, false, "use an S3 bucket key when encrypting the uploaded icon")
}

func initConfigFlags(flag *pflag.FlagSet) {
	flag.String(flagConfig, "", "json, toml, or yaml file with default values for goicon flags")
	flag.BoolP(flagDebug, "d", false, "log each resolved path and copy step")
}

func initCopyFlags(flag *pflag.FlagSet) {
	flag.String(flagAnchor, "", "directory relative paths are resolved against.  Defaults to the directory containing the goicon executable.")
	flag.String(flagSource, icon.DefaultSource, "path or URI of the logo.  Relative paths are resolved against the anchor directory.")
	flag.StringSlice(flagDestination, []string{icon.DefaultDestination}, "path or URI of the notification icon.  Repeat to write several icons; duplicates are copied once.  S3 prefixes only exist once an object is under them, so a new s3:// prefix needs --parents.")
	flag.BoolP(flagParents, "p", false, "create missing directories above each destination.  For s3:// destinations this writes a prefix/ marker object.")
	flag.Int(flagThreads, 1, "number of destinations written at once")
}

func initLogFlags(flag *pflag.FlagSet) {
	flag.String(flagLogPath, "-", "where debug logs are written.  \"-\" is stderr, leaving stdout for the confirmation lines.")
	flag.String(flagLogPerm, "0600", "unix file mode used when the log file is created")
	flag.String(flagLogTimeLayout, "RFC3339Nano", "timestamp layout for log lines, as a go layout or a name listed by goicon layouts")
	flag.String(flagLogTimeZone, "UTC", "time zone of log timestamps")
	flag.Bool(flagLogClientSigning, false, "include S3 request signing in debug logs")
	flag.Bool(flagLogClientRequests, false, "include S3 requests in debug logs")
	flag.Bool(flagLogClientResponses, false, "include S3 responses in debug logs")
	flag.Bool(flagLogClientRetries, false, "include S3 retry attempts in debug logs")
}

func initRootCommandFlags(flag *pflag.FlagSet) {
	initConfigFlags(flag)
	initCopyFlags(flag)
	initAWSFlags(flag)
	initLogFlags(flag)
}

func initViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	err := v.BindPFlags(cmd.Flags())
	if err != nil {
		return v, fmt.Errorf("error binding flag set to viper: %w", err)
	}
	v.SetEnvPrefix("goicon")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv() // set environment variables to overwrite config
	if configPath := v.GetString(flagConfig); len(configPath) > 0 {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return v, fmt.Errorf("error reading config file %q: %w", configPath, err)
		}
	}
	return v, nil
}

func checkAWSConfig(v *viper.Viper) error {
	if retryMaxAttempts := v.GetInt(flagAWSRetryMaxAttempts); retryMaxAttempts < 0 {
		return fmt.Errorf("%q value %d is invalid, expecting value greater than or equal to 0", flagAWSRetryMaxAttempts, retryMaxAttempts)
	}
	return nil
}

func checkLogConfig(v *viper.Viper) error {
	logPath := v.GetString(flagLogPath)
	if len(logPath) == 0 {
		return fmt.Errorf("log path is missing")
	}
	logPerm := v.GetString(flagLogPerm)
	if len(logPerm) == 0 {
		return fmt.Errorf("log perm is missing")
	}
	_, err := strconv.ParseUint(logPerm, 8, 32)
	if err != nil {
		return fmt.Errorf("invalid format for log perm: %s", logPerm)
	}
	if _, err := ts.ParseLocation(v.GetString(flagLogTimeZone)); err != nil {
		return fmt.Errorf("invalid time zone for log timestamps: %w", err)
	}
	return nil
}

func checkCopyConfig(v *viper.Viper) error {
	if source := v.GetString(flagSource); len(source) == 0 {
		return errors.New("source is missing")
	}
	destinations := v.GetStringSlice(flagDestination)
	if len(destinations) == 0 {
		return errors.New("at least one destination is required")
	}
	for _, destination := range destinations {
		if len(destination) == 0 {
			return errors.New("destination cannot be empty")
		}
		if strings.HasPrefix(destination, s3fs.Scheme) {
			if _, key, err := s3fs.ParseURI(destination); err != nil {
				return err
			} else if len(key) == 0 {
				return fmt.Errorf("destination %q is missing an object key", destination)
			}
		}
	}
	if threads := v.GetInt(flagThreads); threads < 1 {
		return fmt.Errorf("threads must be greater than zero, but found %d", threads)
	}
	if err := checkAWSConfig(v); err != nil {
		return fmt.Errorf("error with AWS configuration: %w", err)
	}
	if err := checkLogConfig(v); err != nil {
		return fmt.Errorf("error with log configuration: %w", err)
	}
	return nil
}

type InitS3ClientInput struct {
	Profile string
	Region  string
	// AWS Client
	Endpoint           string
	InsecureSkipVerify bool
	RetryMaxAttempts   int
	UsePathStyle       bool
	// AWS Credentials
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	// Client Log Mode
	Logger             *log.SimpleLogger
	LogClientSigning   bool
	LogClientRetries   bool
	LogClientRequests  bool
	LogClientResponses bool
}

func InitS3Client(ctx context.Context, input *InitS3ClientInput) *s3.Client {
	clientLogMode := aws.ClientLogMode(0)
	if input.LogClientSigning {
		clientLogMode |= aws.LogSigning
	}
	if input.LogClientRetries {
		clientLogMode |= aws.LogRetries
	}
	if input.LogClientRequests {
		clientLogMode |= aws.LogRequest
	}
	if input.LogClientResponses {
		clientLogMode |= aws.LogResponse
	}

	c := aws.Config{
		ClientLogMode:    clientLogMode,
		RetryMaxAttempts: input.RetryMaxAttempts,
		Region:           input.Region,
		Logger:           log.NewClientLogger(input.Logger),
	}

	if len(input.AccessKeyID) > 0 && len(input.SecretAccessKey) > 0 {
		c.Credentials = credentials.NewStaticCredentialsProvider(
			input.AccessKeyID,
			input.SecretAccessKey,
			input.SessionToken)
	} else {
		sharedConfig, err := config.LoadSharedConfigProfile(ctx, input.Profile)
		if err == nil {
			c.Credentials = credentials.NewStaticCredentialsProvider(
				sharedConfig.Credentials.AccessKeyID,
				sharedConfig.Credentials.SecretAccessKey,
				sharedConfig.Credentials.SessionToken)
		}
	}

	if input.InsecureSkipVerify {
		c.HTTPClient = &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: true,
				},
			},
		}
	}

	client := s3.NewFromConfig(c, func(o *s3.Options) {
		o.UsePathStyle = input.UsePathStyle
		if len(input.Endpoint) > 0 {
			o.BaseEndpoint = aws.String(input.Endpoint)
		}
	})

	return client
}

// initFileSystemFactory returns a factory serving local paths from the operating system and s3:// URIs from S3.
// The S3 client is created on first use.
func initFileSystemFactory(v *viper.Viper, logger *log.SimpleLogger) icon.FileSystemFactory {
	var once sync.Once
	var client *s3.Client
	return func(ctx context.Context, uri string, readOnly bool) (fs.FileSystem, string, error) {
		if !strings.HasPrefix(uri, s3fs.Scheme) {
			return icon.LocalFileSystemFactory(ctx, uri, readOnly)
		}
		bucket, key, err := s3fs.ParseURI(uri)
		if err != nil {
			return nil, "", err
		}
		if len(key) == 0 {
			return nil, "", fmt.Errorf("uri %q is missing an object key", uri)
		}
		once.Do(func() {
			profile := v.GetString(flagAWSProfile)
			if len(profile) == 0 {
				profile = "default"
			}
			client = InitS3Client(ctx, &InitS3ClientInput{
				Profile: profile,
				Region:  initRegion(ctx, v, profile),
				// AWS Client
				Endpoint:           v.GetString(flagAWSS3Endpoint),
				InsecureSkipVerify: v.GetBool(flagAWSInsecureSkipVerify),
				RetryMaxAttempts:   v.GetInt(flagAWSRetryMaxAttempts),
				UsePathStyle:       v.GetBool(flagAWSS3UsePathStyle),
				// AWS Credentials
				AccessKeyID:     v.GetString(flagAWSAccessKeyID),
				SecretAccessKey: v.GetString(flagAWSSecretAccessKey),
				SessionToken:    v.GetString(flagAWSSessionToken),
				// Client Mode
				Logger:             logger,
				LogClientSigning:   v.GetBool(flagLogClientSigning),
				LogClientRetries:   v.GetBool(flagLogClientRetries),
				LogClientRequests:  v.GetBool(flagLogClientRequests),
				LogClientResponses: v.GetBool(flagLogClientResponses),
			})
		})
		return s3fs.NewS3FileSystem(client, bucket, v.GetBool(flagBucketKeyEnabled)), key, nil
	}
}

func initRegion(ctx context.Context, v *viper.Viper, profile string) string {
	region := v.GetString(flagAWSRegion)
	if len(region) == 0 {
		if defaultRegion := v.GetString(flagAWSDefaultRegion); len(defaultRegion) > 0 {
			region = defaultRegion
		}
	}
	// if neither region nor default region is specified
	if len(region) == 0 {
		sharedConfig, err := config.LoadSharedConfigProfile(ctx, profile)
		if err == nil {
			region = sharedConfig.Region
		}
	}
	return region
}

func initLogger(v *viper.Viper, stderr io.Writer) (*log.SimpleLogger, func() error, error) {
	path := v.GetString(flagLogPath)
	perm := v.GetString(flagLogPerm)

	location, err := ts.ParseLocation(v.GetString(flagLogTimeZone))
	if err != nil {
		return nil, nil, fmt.Errorf("error parsing time zone for log timestamps: %w", err)
	}
	layout := ts.ParseLayout(v.GetString(flagLogTimeLayout))

	noop := func() error { return nil }

	if path == os.DevNull {
		return log.NewSimpleLoggerWithLayout(io.Discard, layout, location), noop, nil
	}

	if path == "-" {
		return log.NewSimpleLoggerWithLayout(stderr, layout, location), noop, nil
	}

	fileMode := os.FileMode(0600)

	if len(perm) > 0 {
		fm, err := strconv.ParseUint(perm, 8, 32)
		if err != nil {
			return nil, nil, fmt.Errorf("error parsing file permissions for log file from %q", perm)
		}
		fileMode = os.FileMode(fm)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, fileMode)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening log file %q: %w", path, err)
	}

	return log.NewSimpleLoggerWithLayout(f, layout, location), f.Close, nil
}

func exitCode(err error) int {
	switch fs.Kind(err) {
	case fs.ErrFileNotFound:
		return exitCodeFileNotFound
	case fs.ErrPermissionDenied:
		return exitCodePermissionDenied
	case fs.ErrIOFailure:
		return exitCodeIOFailure
	}
	return exitCodeError
}

func newRootCommand(stdout io.Writer, stderr io.Writer) *cobra.Command {
	rootCommand := &cobra.Command{
		Use:                   `goicon [flags]`,
		DisableFlagsInUseLine: true,
		Short: strings.Join([]string{
			"goicon copies an application's logo to its notification icon resource.",
			"Paths are resolved relative to the directory containing the goicon executable, not the working directory.",
			"Local files are specified using the \"file://\" scheme or a path without a scheme.",
			"S3 objects are specified using the \"s3://\" scheme.",
		}, "\n"),
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			v, err := initViper(cmd)
			if err != nil {
				return fmt.Errorf("error initializing viper: %w", err)
			}

			if errConfig := checkCopyConfig(v); errConfig != nil {
				return errConfig
			}

			debug := v.GetBool(flagDebug)

			logger, closeLogger, err := initLogger(v, stderr)
			if err != nil {
				return fmt.Errorf("error initializing logger: %w", err)
			}
			defer func() {
				_ = closeLogger()
			}()

			input := &icon.CopyLogoToIconInput{
				Anchor:       v.GetString(flagAnchor),
				Source:       v.GetString(flagSource),
				Destinations: v.GetStringSlice(flagDestination),
				FileSystems:  initFileSystemFactory(v, logger),
				MakeParents:  v.GetBool(flagParents),
				MaxThreads:   v.GetInt(flagThreads),
				Output:       stdout,
			}
			if debug {
				input.Logger = logger
			}

			results, err := icon.CopyLogoToIcon(ctx, input)
			if err != nil {
				if debug {
					_ = logger.Log("Error copying logo", map[string]interface{}{
						"err": err.Error(),
					})
				}
				return err
			}

			if debug {
				written := int64(0)
				for _, result := range results {
					written += result.Written
				}
				_ = logger.Log("Done copying logo", map[string]interface{}{
					"destinations": len(results),
					"written":      written,
				})
			}

			return nil
		},
	}
	initRootCommandFlags(rootCommand.Flags())

	layoutsCommand := &cobra.Command{
		Use:                   `layouts`,
		DisableFlagsInUseLine: true,
		Short:                 "show supported timestamp layouts for log messages",
		SilenceErrors:         true,
		SilenceUsage:          true,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := make([]string, 0, len(ts.NamedLayouts))
			for name := range ts.NamedLayouts {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(stdout, "%s: %s\n", name, ts.NamedLayouts[name])
			}
			return nil
		},
	}

	schemesCommand := &cobra.Command{
		Use:                   `schemes`,
		DisableFlagsInUseLine: true,
		Short:                 "show supported schemes",
		SilenceErrors:         true,
		SilenceUsage:          true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(stdout, "file")
			fmt.Fprintln(stdout, "s3")
			return nil
		},
	}

	versionCommand := &cobra.Command{
		Use:                   `version`,
		DisableFlagsInUseLine: true,
		Short:                 "show version",
		SilenceErrors:         true,
		SilenceUsage:          true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(stdout, GoIconVersion)
			return nil
		},
	}

	rootCommand.AddCommand(layoutsCommand, schemesCommand, versionCommand)

	rootCommand.SetOut(stdout)
	rootCommand.SetErr(stderr)

	return rootCommand
}

func main() {
	if err := newRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "goicon: "+err.Error())
		if fs.Kind(err) == nil {
			fmt.Fprintln(os.Stderr, "Try \"goicon --help\" for more information.")
		}
		os.Exit(exitCode(err))
	}
}
