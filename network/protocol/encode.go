/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2022 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

package protocol

import (
	"bytes"
	"fmt"
	"reflect"

	libmap "github.com/go-viper/mapstructure/v2"
)

// MarshalJSON implements json.Marshaler. Unknown protocols encode as "".
func (n NetworkProtocol) MarshalJSON() ([]byte, error) {
	s := n.String()
	buf := make([]byte, 0, len(s)+2)
	buf = append(buf, '"')
	buf = append(buf, s...)
	buf = append(buf, '"')
	return buf, nil
}

// UnmarshalJSON implements json.Unmarshaler. Unknown or malformed content decodes to NetworkEmpty.
func (n *NetworkProtocol) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, "'")
	data = bytes.Trim(data, "\"")
	*n = Parse(string(data))
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (n NetworkProtocol) MarshalYAML() (interface{}, error) {
	return n.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (n *NetworkProtocol) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	*n = Parse(s)
	return nil
}

// MarshalText implements encoding.TextMarshaler, used by TOML/CBOR encoders in the pack.
func (n NetworkProtocol) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *NetworkProtocol) UnmarshalText(text []byte) error {
	*n = Parse(string(text))
	return nil
}

// ViperDecoderHook returns a mapstructure DecodeHookFuncType converting strings and
// any integer kind into a NetworkProtocol, for use with viper.DecoderConfigOption.
func ViperDecoderHook() libmap.DecodeHookFuncType {
	var z NetworkProtocol

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(z) {
			return data, nil
		}

		if from.Kind() == reflect.String {
			s, ok := data.(string)
			if !ok {
				return data, nil
			}
			if p := Parse(s); p != NetworkEmpty || s == "" {
				return p, nil
			}
			return nil, fmt.Errorf("invalid value %q for network protocol", s)
		}

		var v int64
		switch from.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			rv := reflect.ValueOf(data)
			v = rv.Int()
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			rv := reflect.ValueOf(data)
			v = int64(rv.Uint())
		default:
			return data, nil
		}

		p := NetworkProtocol(v)
		if v <= 0 || v > int64(NetworkUnixGram) || p.String() == "" {
			return nil, fmt.Errorf("invalid value %d for network protocol", v)
		}
		return p, nil
	}
}
