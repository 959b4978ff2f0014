package testutil

import (
	"embed"
)

//go:embed fixtures/*
var fixturesFS embed.FS

// LoadFixture loads a fixture file by name.
func LoadFixture(name string) ([]byte, error) {
	return fixturesFS.ReadFile("fixtures/" + name)
}

// ReleaseLatest returns a GitHub "latest release" response for v2.14.0.
func ReleaseLatest() []byte {
	return mustFixture("release_latest.json")
}

// ReleaseTagOnly returns a release response with an empty name.
func ReleaseTagOnly() []byte {
	return mustFixture("release_tag_only.json")
}

// InputsTOML returns a complete inputs config file.
func InputsTOML() []byte {
	return mustFixture("inputs.toml")
}

func mustFixture(name string) []byte {
	data, err := LoadFixture(name)
	if err != nil {
		panic(err)
	}
	return data
}
