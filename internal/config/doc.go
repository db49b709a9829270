// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable
// interpolation, which is how the API key and database password stay out
// of the file itself. Selecting the live account requires an explicit
// allow_live flag plus a confirmation variable in the process
// environment; see Validate.
package config
