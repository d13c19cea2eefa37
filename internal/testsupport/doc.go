// Package testsupport provides shared fixtures for package tests: temp-dir
// backed configs, an opened identity cache, and map-backed converters that
// record every call.
package testsupport
