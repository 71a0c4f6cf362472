package main

import (
	"reflect"

	"github.com/LeoCommon/locationsim/internal/config"
	"github.com/LeoCommon/locationsim/pkg/log"
	"go.uber.org/zap"
)

const samplePath = "./config/" + config.ConfigFile

// fillOptional allocates optional sections and names empty strings after their
// field so they bypass "omitempty" and show up in the sample
func fillOptional(v reflect.Value) {
	switch v.Kind() {
	case reflect.Ptr:
		// Create new instance for pointer
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		fillOptional(v.Elem())
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			field := v.Field(i)

			switch field.Kind() {
			case reflect.Ptr, reflect.Struct:
				fillOptional(field)
			case reflect.String:
				if field.String() == "" {
					field.SetString(v.Type().Field(i).Name)
				}
			}
		}
	}
}

func main() {
	log.Init(true)
	defer log.Sync()

	// Start from the regular defaults so the sample verifies
	cf := config.New()
	fillOptional(reflect.ValueOf(cf).Elem())

	m, err := config.NewManagerFrom(cf, samplePath)
	if err != nil {
		log.Fatal("sample config does not verify", zap.Error(err))
	}

	if err := m.Save(); err != nil {
		log.Fatal("Failed to write config file", zap.Error(err))
	}

	log.Info("sample config written", zap.String("path", samplePath))
}
