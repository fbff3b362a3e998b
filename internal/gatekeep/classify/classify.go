// Package classify turns a raw client identity string into the small
// classification the policy engine branches on. Parsing heuristics are
// delegated to mileusna/useragent; this package only fixes the vocabulary
// and the defaults for missing signals.
package classify

import (
	"strings"

	"github.com/mileusna/useragent"

	"github.com/aussiebroadwan/gatekeep/internal/gatekeep/domain"
)

// Classify never fails: a missing or unparseable identity resolves every
// attribute to its explicit default rather than an error.
func Classify(rawIdentity string) domain.ClientClassification {
	ua := useragent.Parse(strings.TrimSpace(rawIdentity))

	return domain.ClientClassification{
		SoftwareFamily:  softwareFamily(ua),
		OperatingSystem: operatingSystem(ua),
		DeviceClass:     deviceClass(ua),
	}
}

// Browser names the parser can emit that the policy does not branch on.
// These pass through as-is; anything outside this set is an unrecognized
// product token and resolves to FamilyUnknown.
var passthroughFamilies = map[string]struct{}{
	useragent.Firefox:    {},
	useragent.Safari:     {},
	useragent.Opera:      {},
	useragent.OperaMini:  {},
	useragent.OperaTouch: {},
	useragent.Vivaldi:    {},
}

// softwareFamily normalises the parser's browser name into the policy
// vocabulary. IE11 identifies itself with a bare Trident token rather than
// an MSIE one, so both spellings fold into the same family.
func softwareFamily(ua useragent.UserAgent) string {
	switch ua.Name {
	case useragent.Chrome, useragent.HeadlessChrome:
		return domain.FamilyChrome
	case useragent.Edge:
		return domain.FamilyEdge
	case useragent.InternetExplorer, "Trident":
		return domain.FamilyInternetExplorer
	}

	if _, ok := passthroughFamilies[ua.Name]; ok {
		return ua.Name
	}
	return domain.FamilyUnknown
}

func operatingSystem(ua useragent.UserAgent) string {
	if ua.OS == "" {
		return domain.OSUnknown
	}
	return ua.OS
}

// deviceClass is Mobile only on an explicit mobile signal. Tablets and bots
// carry an explicit non-mobile device signal and land in Other; everything
// else, including a completely absent signal, defaults to Desktop.
func deviceClass(ua useragent.UserAgent) domain.DeviceClass {
	switch {
	case ua.Mobile:
		return domain.DeviceMobile
	case ua.Tablet, ua.Bot:
		return domain.DeviceOther
	default:
		return domain.DeviceDesktop
	}
}
