package utils

import (
	"context"
	"fmt"
	"regexp"

	twilio "github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	lookupsv2 "github.com/twilio/twilio-go/rest/lookups/v2"
)

// Phones travel through the system as bare international digits
// ("441234567890") — no "+", no separators. The channel layer adds
// the "+" when talking to Twilio.
var internationalNumericRegex = regexp.MustCompile(`^[1-9]\d{6,14}$`)

// IsInternationalNumeric reports whether the string is a plausible
// international phone number in the bare-digits form.
func IsInternationalNumeric(number string) bool {
	return internationalNumericRegex.MatchString(number)
}

// ValidatePhoneNumber validates `number`.
//
//   - If validateWithTwilio == true *and* a non-nil Twilio RestClient is
//     provided, the function performs a Twilio Lookups V2 fetch on top of
//     the local syntax check.
//   - Otherwise it validates locally only.
//
// Returns (false, nil) for malformed or unknown numbers, and a non-nil
// error only for lookup transport failures.
func ValidatePhoneNumber(
	ctx context.Context,
	number string,
	validateWithTwilio bool,
	tw *twilio.RestClient,
) (bool, error) {
	if !IsInternationalNumeric(number) {
		return false, nil
	}

	if validateWithTwilio && tw != nil {
		_, err := tw.LookupsV2.FetchPhoneNumber("+"+number, &lookupsv2.FetchPhoneNumberParams{})
		if err == nil {
			return true, nil
		}

		if restErr, ok := err.(*twilioclient.TwilioRestError); ok {
			if restErr.Status == 404 { // unable to find that phone number
				return false, nil
			}
			return false, fmt.Errorf("twilio lookup failed: %d %s",
				restErr.Status, restErr.Error())
		}
		// Context cancel, network failure, etc.
		return false, err
	}

	return true, nil
}
