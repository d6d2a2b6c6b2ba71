// Package share encodes a rendering configuration as URL query parameters.
//
// Every parameter is optional. An absent parameter always means the default
// for that flag, so a link reproduces one exact configuration no matter what
// the viewer looked at before.
package share

import (
	"net/url"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/privacy"
)

// Query parameter names.
const (
	ParamPrivacy     = "privacy"
	ParamPhoto       = "photo"
	ParamExperience  = "experience"
	ParamAttachments = "attachments"
	ParamVersion     = "version"
)

// Options is one rendering configuration.
type Options struct {
	Privacy         privacy.Level
	ShowPhoto       bool
	ShowExperience  bool
	ShowAttachments bool
	// VersionID selects a variant. Empty means the default selection.
	VersionID string
}

// Defaults returns the configuration used when no parameter is given.
func Defaults() (opts Options) {
	opts = Options{
		Privacy:         privacy.LevelNone,
		ShowPhoto:       true,
		ShowExperience:  true,
		ShowAttachments: false,
	}
	return opts
}

// Parse reads options from query values. An invalid value falls back to the
// default for that parameter and is reported in the returned error; opts is
// usable either way.
func Parse(values url.Values) (opts Options, err error) {
	opts = Defaults()

	if raw, ok := lookup(values, ParamPrivacy); ok {
		level, perr := privacy.ParseLevel(raw)
		if perr != nil {
			err = multierr.Append(err, errors.Wrapf(perr, "parameter %s", ParamPrivacy))
		} else {
			opts.Privacy = level
		}
	}

	opts.ShowPhoto, err = parseFlag(values, ParamPhoto, opts.ShowPhoto, err)
	opts.ShowExperience, err = parseFlag(values, ParamExperience, opts.ShowExperience, err)
	opts.ShowAttachments, err = parseFlag(values, ParamAttachments, opts.ShowAttachments, err)

	if raw, ok := lookup(values, ParamVersion); ok {
		opts.VersionID = raw
	}

	return opts, err
}

// ParseQuery parses a raw query string such as "privacy=full&photo=false".
// A leading '?' is ignored.
func ParseQuery(query string) (opts Options, err error) {
	if len(query) > 0 && query[0] == '?' {
		query = query[1:]
	}

	var values url.Values
	values, err = url.ParseQuery(query)
	if err != nil {
		opts = Defaults()
		err = errors.Wrap(err, "failed to parse query string")
		return opts, err
	}

	opts, err = Parse(values)
	return opts, err
}

// Encode returns the query values for opts. Values equal to the default are
// left out.
func (o Options) Encode() (values url.Values) {
	values = url.Values{}
	d := Defaults()

	if o.Privacy != d.Privacy && o.Privacy != "" {
		values.Set(ParamPrivacy, string(o.Privacy))
	}
	if o.ShowPhoto != d.ShowPhoto {
		values.Set(ParamPhoto, strconv.FormatBool(o.ShowPhoto))
	}
	if o.ShowExperience != d.ShowExperience {
		values.Set(ParamExperience, strconv.FormatBool(o.ShowExperience))
	}
	if o.ShowAttachments != d.ShowAttachments {
		values.Set(ParamAttachments, strconv.FormatBool(o.ShowAttachments))
	}
	if o.VersionID != "" {
		values.Set(ParamVersion, o.VersionID)
	}
	return values
}

// String returns the encoded query string without a leading '?'.
func (o Options) String() (query string) {
	query = o.Encode().Encode()
	return query
}

// lookup returns the first value of key. An empty value counts as absent.
func lookup(values url.Values, key string) (value string, ok bool) {
	value = values.Get(key)
	ok = value != ""
	return value, ok
}

func parseFlag(values url.Values, key string, fallback bool, errs error) (flag bool, err error) {
	flag = fallback
	err = errs

	raw, ok := lookup(values, key)
	if !ok {
		return flag, err
	}

	parsed, perr := strconv.ParseBool(raw)
	if perr != nil {
		err = multierr.Append(err, errors.Errorf("parameter %s: invalid boolean %q", key, raw))
		return flag, err
	}

	flag = parsed
	return flag, err
}
