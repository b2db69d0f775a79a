package main

import (
	"fmt"
	"os"
	"os/signal"
	"reflect"
	"strings"
	"syscall"
	"time"

	"academy/config"
	"academy/internal/command"
	"academy/internal/log"
	"academy/utils/path"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	rootPath = path.RootPath()
	Version  string
	envPath  string
	yamlPath string
	conf     *config.Configuration
	logger   *zap.Logger
)

func bindFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&envPath, "env", "e", "", "Environment file, e.g. --env .env")
	flags.StringVarP(&yamlPath, "config", "c", "", "YAML config file, e.g. --config config.yaml")
}

func main() {
	rootCmd := &cobra.Command{
		Use:          "app",
		Short:        "connect to MongoDB, provision indexes and serve health checks",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// 先註冊 signal，連線與建索引期間收到 SIGINT / SIGTERM 也會關閉連線並以 0 結束
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			app, cleanup, err := wireApp(conf, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			logger.Info("start app ...")
			return serve(cmd.Context(), logger, app, quit, 5*time.Second)
		},
	}
	bindFlags(rootCmd.PersistentFlags())

	cobra.OnInitialize(func() {
		if envPath != "" && yamlPath != "" {
			fmt.Println("同時指定 --env 與 --config，將以 --env 優先")
		}
		initConfig()
		initLogger()
	})

	command.Register(rootCmd, func() (*command.Command, func(), error) {
		return wireCommand(conf, logger)
	})

	err := rootCmd.Execute()
	if logger != nil {
		_ = logger.Sync()
	}
	if err != nil {
		os.Exit(1)
	}
}

func initLogger() {
	if conf == nil {
		panic("config is nil! Check config/initConfig logic.")
	}
	if Version != "" && conf.App.Version == "" {
		conf.App.Version = Version
	}
	var err error
	logger, err = log.NewLogger(conf)
	if err != nil {
		panic(fmt.Errorf("init logger failed: %w", err))
	}
}

func initConfig() {
	v := newViper()
	useFile := false

	if envPath != "" {
		useFile = true
		envPath = path.Resolve(rootPath, envPath)
		fmt.Println("load .env config:", envPath)
		v.SetConfigFile(envPath)
		v.SetConfigType("env")
	} else if yamlPath != "" {
		useFile = true
		yamlPath = path.Resolve(rootPath, "conf", yamlPath)
		fmt.Println("load yaml config:", yamlPath)
		v.SetConfigFile(yamlPath)
		v.SetConfigType("yaml")
	} else {
		fmt.Println("No configuration file specified, using environment variables only.")
	}

	if useFile {
		if err := v.ReadInConfig(); err != nil {
			panic(fmt.Errorf("read config failed: %w", err))
		}
		v.WatchConfig()
		v.OnConfigChange(func(in fsnotify.Event) {
			fmt.Println("config file changed:", in.Name)
			if err := v.Unmarshal(&conf); err != nil {
				fmt.Println("unmarshal on change failed:", err)
			}
		})
	}

	if err := v.Unmarshal(&conf); err != nil {
		panic(fmt.Errorf("unmarshal config failed: %w", err))
	}
}

// newViper 環境變數以 "__" 分層（MONGODB__URI），並接受 MONGODB_URI
func newViper() *viper.Viper {
	v := viper.NewWithOptions(viper.KeyDelimiter("__"))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	v.AutomaticEnv()

	v.SetDefault("APP__NAME", "academy")
	v.SetDefault("APP__ENV", "development")
	v.SetDefault("APP__PORT", 8080)
	v.SetDefault("LOG__LEVEL", "info")
	v.SetDefault("INDEX__TIMEOUT", "30s")

	bindEnvs(v, reflect.TypeOf(config.Configuration{}))
	_ = v.BindEnv("MONGODB__URI", "MONGODB__URI", "MONGODB_URI")
	return v
}

func bindEnvs(v *viper.Viper, t reflect.Type, path ...string) {
	// 若遇到指標，取其 Elem
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			tag = field.Name
		}
		newPath := append(append([]string{}, path...), tag)
		if field.Type.Kind() == reflect.Struct || (field.Type.Kind() == reflect.Ptr && field.Type.Elem().Kind() == reflect.Struct) {
			bindEnvs(v, field.Type, newPath...)
		} else {
			_ = v.BindEnv(strings.Join(newPath, "__"))
		}
	}
}
