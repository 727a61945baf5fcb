package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/trustedgroup/enrollment-service/internal/utils"
)

// Config holds all application configuration, including secrets, flags, etc.
type Config struct {
	OrganizationName string
	AppName          string
	AppPort          string
	AppUrl           string
	DBUrl            string

	// Shared secret phrase an invited phone must text back to begin
	// verification.
	InvitePhrase string

	// Session credential
	SessionSecret []byte
	SessionTTL    time.Duration

	// Admin gate
	AdminHandles    []string
	PermitAllAdmins bool

	// Verification channel (Twilio)
	TwilioAccountSID       string
	TwilioAuthToken        string
	TwilioVerifyServiceSID string
	TwilioFromPhone        string

	ValidatePhoneWithTwilio bool
	ChannelTimeout          time.Duration
}

const (
	OrganizationName      = "TrustedGroup"
	DefaultSessionTTL     = 7 * 24 * time.Hour
	DefaultChannelTimeout = 10 * time.Second

	// Cleanup horizons for rows that never completed the flow.
	StalePendingSessionHours = 24
	StaleAllowlistDays       = 30
)

// AppName is overridden with -ldflags at build time.
var AppName string

// LoadConfig reads the environment and fails fast on anything missing.
func LoadConfig() *Config {
	if AppName == "" {
		AppName = "enrollment-service"
	}

	utils.Logger.Info("Loading config for app: ", AppName)

	//----------------------------------------------------------------------
	// Runtime environment vars
	//----------------------------------------------------------------------
	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		utils.Logger.Fatal("APP_URL env var is missing")
	}
	appPort := os.Getenv("APP_PORT")
	if appPort == "" {
		utils.Logger.Fatal("APP_PORT env var is missing")
	}
	dbUrl := os.Getenv("DB_URL")
	if dbUrl == "" {
		utils.Logger.Fatal("DB_URL env var is missing")
	}

	invitePhrase := os.Getenv("INVITE_PHRASE")
	if invitePhrase == "" {
		utils.Logger.Fatal("INVITE_PHRASE env var is missing")
	}

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		utils.Logger.Fatal("SESSION_SECRET env var is missing")
	}

	//----------------------------------------------------------------------
	// Verification channel credentials
	//----------------------------------------------------------------------
	twilioAccountSID := os.Getenv("TWILIO_ACCOUNT_SID")
	if twilioAccountSID == "" {
		utils.Logger.Fatal("TWILIO_ACCOUNT_SID env var is missing")
	}
	twilioAuthToken := os.Getenv("TWILIO_AUTH_TOKEN")
	if twilioAuthToken == "" {
		utils.Logger.Fatal("TWILIO_AUTH_TOKEN env var is missing")
	}
	twilioVerifyServiceSID := os.Getenv("TWILIO_VERIFY_SERVICE_SID")
	if twilioVerifyServiceSID == "" {
		utils.Logger.Fatal("TWILIO_VERIFY_SERVICE_SID env var is missing")
	}
	twilioFromPhone := os.Getenv("TWILIO_FROM_PHONE")
	if twilioFromPhone == "" {
		utils.Logger.Fatal("TWILIO_FROM_PHONE env var is missing")
	}

	//----------------------------------------------------------------------
	// Admin gate
	//----------------------------------------------------------------------
	var adminHandles []string
	for _, h := range strings.Split(os.Getenv("ADMIN_HANDLES"), ",") {
		if h = strings.TrimSpace(h); h != "" {
			adminHandles = append(adminHandles, h)
		}
	}
	permitAllAdmins := boolEnv("PERMIT_ALL_ADMINS")
	if permitAllAdmins {
		utils.Logger.Warn("PERMIT_ALL_ADMINS is set; every session passes the admin gate. Do not run this in production.")
	} else if len(adminHandles) == 0 {
		utils.Logger.Fatal("ADMIN_HANDLES env var is missing (or set PERMIT_ALL_ADMINS=true for development)")
	}

	//----------------------------------------------------------------------
	// Optional knobs
	//----------------------------------------------------------------------
	sessionTTL := DefaultSessionTTL
	if raw := os.Getenv("SESSION_TTL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			utils.Logger.WithError(err).Fatalf("Invalid SESSION_TTL %q", raw)
		}
		sessionTTL = d
	}

	channelTimeout := DefaultChannelTimeout
	if raw := os.Getenv("CHANNEL_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			utils.Logger.WithError(err).Fatalf("Invalid CHANNEL_TIMEOUT %q", raw)
		}
		channelTimeout = d
	}

	utils.Logger.Infof("Loaded config for %s", AppName)

	return &Config{
		OrganizationName:        OrganizationName,
		AppName:                 AppName,
		AppPort:                 appPort,
		AppUrl:                  appURL,
		DBUrl:                   dbUrl,
		InvitePhrase:            invitePhrase,
		SessionSecret:           []byte(sessionSecret),
		SessionTTL:              sessionTTL,
		AdminHandles:            adminHandles,
		PermitAllAdmins:         permitAllAdmins,
		TwilioAccountSID:        twilioAccountSID,
		TwilioAuthToken:         twilioAuthToken,
		TwilioVerifyServiceSID:  twilioVerifyServiceSID,
		TwilioFromPhone:         twilioFromPhone,
		ValidatePhoneWithTwilio: boolEnv("VALIDATE_PHONE_WITH_TWILIO"),
		ChannelTimeout:          channelTimeout,
	}
}

func boolEnv(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}
