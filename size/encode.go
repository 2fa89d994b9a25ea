/*
 * MIT License
 *
 * Copyright (c) 2019 Nicolas JUHEL
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

package size

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	libmap "github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

func (s Size) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Size) UnmarshalText(text []byte) error {
	v, err := ParseByte(text)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s Size) MarshalBinary() ([]byte, error) {
	return s.MarshalCBOR()
}

func (s *Size) UnmarshalBinary(data []byte) error {
	return s.UnmarshalCBOR(data)
}

func (s Size) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Size) UnmarshalJSON(p []byte) error {
	var str string
	if err := json.Unmarshal(p, &str); err != nil {
		return err
	}

	v, err := Parse(str)
	if err != nil {
		return err
	}

	*s = v
	return nil
}

func (s Size) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

func (s *Size) UnmarshalYAML(value *yaml.Node) error {
	v, err := Parse(value.Value)
	if err != nil {
		return err
	}

	*s = v
	return nil
}

func (s Size) MarshalTOML() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", s.String())), nil
}

func (s *Size) UnmarshalTOML(i interface{}) error {
	switch t := i.(type) {
	case string:
		v, err := Parse(t)
		if err != nil {
			return err
		}
		*s = v
		return nil
	case []byte:
		v, err := ParseByte(t)
		if err != nil {
			return err
		}
		*s = v
		return nil
	default:
		return fmt.Errorf("size: cannot unmarshal TOML value of type %T", i)
	}
}

func (s Size) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(s.String())
}

func (s *Size) UnmarshalCBOR(data []byte) error {
	var str string
	if err := cbor.Unmarshal(data, &str); err != nil {
		return err
	}

	v, err := Parse(str)
	if err != nil {
		return err
	}

	*s = v
	return nil
}

// ViperDecoderHook lets mapstructure/viper decode a string or numeric config
// value directly into a Size field.
func ViperDecoderHook() libmap.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(Size(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return Parse(v)
		case int:
			return ParseInt64(int64(v)), nil
		case int64:
			return ParseInt64(v), nil
		case uint64:
			return ParseUint64(v), nil
		case float64:
			return ParseFloat64(v), nil
		default:
			return data, nil
		}
	}
}
