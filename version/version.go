/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package version carries a binary's build metadata (package path, release,
// build hash, license) and exposes it for --version output and Go-runtime
// compatibility checks.
package version

import (
	"fmt"
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ferronweb/ferron/errors"
)

// Version exposes a binary's build metadata.
type Version interface {
	GetTime() time.Time
	GetDate() string
	GetRootPackagePath() string
	GetPackage() string
	GetDescription() string
	GetBuild() string
	GetRelease() string
	GetAuthor() string
	GetPrefix() string
	GetAppId() string
	GetHeader() string
	GetInfo() string

	GetLicenseName() string
	GetLicenseLegal(extra ...License) string
	GetLicenseBoiler(extra ...License) string
	GetLicenseFull(extra ...License) string

	PrintInfo()
	PrintLicense(extra ...License)

	// CheckGo verifies the runtime Go version against requiredVersion under
	// operator (>=, >, <=, <, ==, ~>).
	CheckGo(requiredVersion string, operator string) errors.Error
}

type version struct {
	mut sync.RWMutex

	license License
	pkg     string
	desc    string
	date    time.Time
	build   string
	release string
	author  string
	prefix  string

	rootPkgPath string
}

// NewVersion builds a Version from the binary's build metadata.
//
// refStruct is any value living in (or near) the binary's root package; its
// reflected package path is used to derive GetRootPackagePath and, when pkg
// is empty or "noname", GetPackage. numSubPackage walks that path up by that
// many directory components, letting a leaf package point back at its module
// root.
func NewVersion(license License, pkg, description, dateStr, build, release, author, prefix string, refStruct any, numSubPackage int) Version {
	t, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		t = time.Now()
	}

	rootPath := reflect.TypeOf(refStruct).PkgPath()
	for i := 0; i < numSubPackage; i++ {
		if idx := strings.LastIndex(rootPath, "/"); idx >= 0 {
			rootPath = rootPath[:idx]
		}
	}

	if pkg == "" || pkg == "noname" {
		if idx := strings.LastIndex(rootPath, "/"); idx >= 0 {
			pkg = rootPath[idx+1:]
		} else {
			pkg = rootPath
		}
	}

	return &version{
		license:     license,
		pkg:         pkg,
		desc:        description,
		date:        t,
		build:       build,
		release:     release,
		author:      author,
		prefix:      prefix,
		rootPkgPath: rootPath,
	}
}

func (v *version) GetTime() time.Time {
	v.mut.RLock()
	defer v.mut.RUnlock()
	return v.date
}

func (v *version) GetDate() string {
	v.mut.RLock()
	defer v.mut.RUnlock()
	return v.date.Format(time.RFC3339)
}

func (v *version) GetRootPackagePath() string {
	v.mut.RLock()
	defer v.mut.RUnlock()
	return v.rootPkgPath
}

func (v *version) GetPackage() string {
	v.mut.RLock()
	defer v.mut.RUnlock()
	return v.pkg
}

func (v *version) GetDescription() string {
	v.mut.RLock()
	defer v.mut.RUnlock()
	return v.desc
}

func (v *version) GetBuild() string {
	v.mut.RLock()
	defer v.mut.RUnlock()
	return v.build
}

func (v *version) GetRelease() string {
	v.mut.RLock()
	defer v.mut.RUnlock()
	return v.release
}

func (v *version) GetAuthor() string {
	v.mut.RLock()
	defer v.mut.RUnlock()
	return fmt.Sprintf("%s (source: %s)", v.author, v.rootPkgPath)
}

func (v *version) GetPrefix() string {
	v.mut.RLock()
	defer v.mut.RUnlock()
	return strings.ToUpper(v.prefix)
}

func (v *version) GetAppId() string {
	v.mut.RLock()
	defer v.mut.RUnlock()
	return fmt.Sprintf("%s-%s-%s/Runtime:%s", v.release, runtime.GOOS, runtime.GOARCH, runtime.Version())
}

func (v *version) GetHeader() string {
	v.mut.RLock()
	defer v.mut.RUnlock()
	return fmt.Sprintf("%s %s (build %s)", v.pkg, v.release, v.build)
}

func (v *version) GetInfo() string {
	v.mut.RLock()
	defer v.mut.RUnlock()
	return fmt.Sprintf(
		"%s\n%s\n\nRelease: %s\nBuild: %s\nDate: %s\nAuthor: %s",
		v.pkg, v.desc, v.release, v.build, v.date.Format(time.RFC3339), v.author,
	)
}

func (v *version) GetLicenseName() string {
	v.mut.RLock()
	defer v.mut.RUnlock()
	return v.license.Name()
}

func (v *version) year() string {
	return strconv.Itoa(v.date.Year())
}

func (v *version) GetLicenseLegal(extra ...License) string {
	v.mut.RLock()
	defer v.mut.RUnlock()

	blocks := make([]string, 0, len(extra))
	for _, l := range extra {
		blocks = append(blocks, l.legal(v.pkg, v.desc, v.author, v.year()))
	}

	return joinLicenseBlocks(v.license.legal(v.pkg, v.desc, v.author, v.year()), blocks)
}

func (v *version) GetLicenseBoiler(extra ...License) string {
	v.mut.RLock()
	defer v.mut.RUnlock()

	blocks := make([]string, 0, len(extra))
	for _, l := range extra {
		blocks = append(blocks, l.boiler(v.pkg, v.desc, v.author, v.year()))
	}

	return joinLicenseBlocks(v.license.boiler(v.pkg, v.desc, v.author, v.year()), blocks)
}

func (v *version) GetLicenseFull(extra ...License) string {
	return v.GetLicenseBoiler(extra...) + "\n\n" + separator + "\n\n" + v.GetLicenseLegal(extra...)
}

func (v *version) PrintInfo() {
	println(v.GetHeader())
	println(v.GetInfo())
}

func (v *version) PrintLicense(extra ...License) {
	println(v.GetLicenseBoiler(extra...))
}
