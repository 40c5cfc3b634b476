package detect

import (
	"reflect"
	"testing"

	"github.com/brownzinoart/weready/internal/core/errors"
)

func extract(t *testing.T, lang Language, source string) []string {
	t.Helper()
	p := NewParser()
	refs, err := p.ExtractImports(lang, []byte(source))
	if err != nil {
		t.Fatalf("ExtractImports failed: %v", err)
	}
	return refs
}

func TestExtractImports_Python(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{
			"plain imports",
			"import os\nimport numpy\nimport totally_fake_pkg_xyz123\n",
			[]string{"numpy", "os", "totally_fake_pkg_xyz123"},
		},
		{
			"aliased import keeps the module name",
			"import numpy as np\n",
			[]string{"numpy"},
		},
		{
			"from import takes only the module",
			"from collections import defaultdict\nfrom flask.views import MethodView\n",
			[]string{"collections", "flask"},
		},
		{
			"relative imports are excluded",
			"from . import sibling\nfrom ..pkg import thing\nimport os\n",
			[]string{"os"},
		},
		{
			"dotted import truncates to first segment",
			"import urllib.request\n",
			[]string{"urllib"},
		},
		{
			"nested and conditional imports",
			"def f():\n    import json\n\nif True:\n    import yaml\n",
			[]string{"json", "yaml"},
		},
		{
			"duplicates collapse",
			"import os\nimport os.path\nfrom os import getcwd\n",
			[]string{"os"},
		},
		{
			"empty source",
			"",
			[]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extract(t, LangPython, tt.source)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestExtractImports_JavaScript(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{
			"esm imports",
			"import express from 'express';\nimport { thing } from 'lodash/fp';\n",
			[]string{"express", "lodash"},
		},
		{
			"scoped package keeps scope and name",
			"import { Component } from '@angular/core';\nimport x from '@scope/pkg/deep';\n",
			[]string{"@angular/core", "@scope/pkg"},
		},
		{
			"require calls",
			"const axios = require('axios');\nconst local = require('./local');\n",
			[]string{"axios"},
		},
		{
			"dynamic import",
			"const mod = await import('dayjs');\n",
			[]string{"dayjs"},
		},
		{
			"node prefix resolves to the builtin name",
			"import { readFile } from 'node:fs';\n",
			[]string{"fs"},
		},
		{
			"re-export",
			"export { helper } from 'ramda';\n",
			[]string{"ramda"},
		},
		{
			"side-effect relative import excluded",
			"import './styles.css';\nimport 'zone.js';\n",
			[]string{"zone.js"},
		},
		{
			"empty source",
			"",
			[]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extract(t, LangJavaScript, tt.source)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestExtractImports_MalformedSourceStillExtracts(t *testing.T) {
	// tree-sitter produces a partial tree with error nodes; imports that did
	// parse are still usable.
	got := extract(t, LangPython, "import os\ndef broken(:\nimport json\n")
	for _, want := range []string{"os"} {
		found := false
		for _, ref := range got {
			if ref == want {
				found = true
			}
		}
		if !found {
			t.Errorf("expected %q in %v", want, got)
		}
	}
}

func TestExtractImports_UnsupportedLanguage(t *testing.T) {
	p := NewParser()
	_, err := p.ExtractImports(Language("ruby"), []byte("require 'rails'"))
	if err == nil {
		t.Fatal("expected error for unsupported language")
	}
	if !errors.IsCode(err, errors.CodeNotSupported) {
		t.Errorf("expected NOT_SUPPORTED code, got %v", err)
	}
	if p.Supported(Language("ruby")) {
		t.Error("ruby must not report a structural path")
	}
}
