package normalize

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// PhoneNumbersFormatter formats numbers with libphonenumber metadata. Only
// numbers that are valid for the region's numbering plan are accepted.
type PhoneNumbersFormatter struct{}

func (PhoneNumbersFormatter) Format(number, region string) (string, bool) {
	region = strings.ToUpper(strings.TrimSpace(region))
	if number == "" || (region == "" && !strings.HasPrefix(number, "+")) {
		return "", false
	}
	num, err := phonenumbers.Parse(number, region)
	if err != nil {
		return "", false
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", false
	}
	return phonenumbers.Format(num, phonenumbers.E164), true
}

// PhoneKeypad maps letters with the standard telephone keypad (ABC=2 ... WXYZ=9).
// Characters other than letters are left in place.
type PhoneKeypad struct{}

func (PhoneKeypad) LettersToDigits(s string) string {
	return phonenumbers.ConvertAlphaCharactersInNumber(s)
}
