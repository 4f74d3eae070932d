package ws

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
)

const maxSubmissionLength = 128

var (
	aliasPattern   = regexp.MustCompile(`^[0-9A-Za-z]{1,12}$`)
	codePattern    = regexp.MustCompile(`^[0-9A-Za-z]{4}$`)
	articlePattern = regexp.MustCompile(`^/wiki/[^/]+$`)

	errInvalidFormat = errors.New("invalid command format; updating the extension may be required")
	errBadAlias      = errors.New("alias must be 1 to 12 alphanumeric characters")
	errBadRoundTime  = errors.New("round time limit must be a number between 5 and 1800, i.e. within 5 seconds to 30 minutes")
	errBadCode       = errors.New("lobby code must be 4 characters and alphanumeric")
)

func validateAlias(alias string) error {
	if !aliasPattern.MatchString(alias) {
		return errBadAlias
	}
	return nil
}

func (h *Handler) validateJoin(fields []string) error {
	if len(fields) != 3 {
		return errInvalidFormat
	}
	if err := validateAlias(fields[1]); err != nil {
		return err
	}
	if !codePattern.MatchString(fields[2]) {
		return errBadCode
	}
	return nil
}

func (h *Handler) validateSubmit(fields []string) error {
	if len(fields) != 2 {
		return errInvalidFormat
	}
	if len(fields[1]) > maxSubmissionLength {
		return fmt.Errorf("submission is greater than %d characters", maxSubmissionLength)
	}
	candidate, err := url.Parse(fields[1])
	if err != nil || !candidate.IsAbs() {
		return fmt.Errorf("'%s' is not a valid URL", fields[1])
	}
	if candidate.Host != h.host {
		return fmt.Errorf("host of the submitted URL is not '%s'", h.host)
	}
	if !articlePattern.MatchString(candidate.Path) {
		return errors.New("submission URL does not follow the article pattern; trailing slashes may need to be removed")
	}
	return nil
}

func (h *Handler) validateVisit(fields []string) error {
	if len(fields) != 3 {
		return errInvalidFormat
	}
	if !articlePattern.MatchString(fields[1]) || !articlePattern.MatchString(fields[2]) {
		return errors.New("visited pages must be article pathnames")
	}
	return nil
}
