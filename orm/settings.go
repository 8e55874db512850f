package orm

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"

	"github.com/coderi421/sqlmapper/orm/dialect"
	"github.com/coderi421/sqlmapper/orm/internal/errs"
	"github.com/coderi421/sqlmapper/orm/mapper"
)

// EnvPrefix 环境变量覆盖配置文件，例如 SQLMAPPER_DATASOURCE_HOST
const EnvPrefix = "SQLMAPPER"

// Settings 可以从 yaml, json, toml 文件中加载
//
//	dialect: mysql
//	pluralize: true
//	column_naming: underscore
//	datasource:
//	  driver: mysql
//	  host: localhost
//	  port: 3306
type Settings struct {
	// Dialect 为空的时候使用 datasource.driver 推断
	Dialect         string     `mapstructure:"dialect"`
	Pluralize       bool       `mapstructure:"pluralize"`
	ColumnNaming    string     `mapstructure:"column_naming"`
	MapperCacheSize int        `mapstructure:"mapper_cache_size"`
	DataSource      DataSource `mapstructure:"datasource"`
}

type DataSource struct {
	Driver   string            `mapstructure:"driver"`
	Host     string            `mapstructure:"host"`
	Port     int               `mapstructure:"port"`
	User     string            `mapstructure:"user"`
	Password string            `mapstructure:"password"`
	Database string            `mapstructure:"database"`
	Params   map[string]string `mapstructure:"params"`
}

// LoadSettings path 为空的时候只读取环境变量
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 环境变量只对已知的 key 生效
	for _, key := range []string{
		"dialect", "column_naming",
		"datasource.driver", "datasource.host", "datasource.user",
		"datasource.password", "datasource.database",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("pluralize", false)
	v.SetDefault("mapper_cache_size", 0)
	v.SetDefault("datasource.port", 0)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("orm: read settings %s: %w", path, err)
		}
	}
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("orm: unmarshal settings: %w", err)
	}
	return &s, nil
}

// Options 把配置转换成 ConfigOption
func (s Settings) Options() ([]ConfigOption, error) {
	name := s.Dialect
	if name == "" {
		name = s.DataSource.Driver
	}
	opts := make([]ConfigOption, 0, 4)
	if name != "" {
		d, err := dialect.ByName(name)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithDialect(d))
	}
	if s.Pluralize {
		opts = append(opts, WithPluralizedTables())
	}
	switch strings.ToLower(s.ColumnNaming) {
	case "", "field":
	case "underscore", "snake":
		opts = append(opts, WithColumnNamer(mapper.Underscore))
	default:
		return nil, errs.NewErrArgument("column_naming", "unknown column naming "+s.ColumnNaming)
	}
	if s.MapperCacheSize > 0 {
		opts = append(opts, WithMapperCacheSize(s.MapperCacheSize))
	}
	return opts, nil
}

// NewConfigurationFromSettings extra 会在配置文件之后应用
func NewConfigurationFromSettings(s Settings, extra ...ConfigOption) (*Configuration, error) {
	opts, err := s.Options()
	if err != nil {
		return nil, err
	}
	return NewConfiguration(append(opts, extra...)...)
}

// OpenWithSettings 按照 datasource 打开数据库
func OpenWithSettings(s Settings, opts ...DBOption) (*DB, error) {
	cfg, err := NewConfigurationFromSettings(s)
	if err != nil {
		return nil, err
	}
	dsn, err := s.DataSource.DSN()
	if err != nil {
		return nil, err
	}
	return Open(s.DataSource.Driver, dsn, append([]DBOption{DBWithConfiguration(cfg)}, opts...)...)
}

// DSN 按照驱动的格式拼接连接串
func (ds DataSource) DSN() (string, error) {
	switch strings.ToLower(ds.Driver) {
	case "mysql":
		cfg := mysql.NewConfig()
		cfg.User = ds.User
		cfg.Passwd = ds.Password
		cfg.Net = "tcp"
		cfg.Addr = ds.addr(3306)
		cfg.DBName = ds.Database
		if len(ds.Params) > 0 {
			cfg.Params = ds.Params
		}
		return cfg.FormatDSN(), nil
	case "postgres", "postgresql", "pgx":
		u := url.URL{
			Scheme:   "postgres",
			User:     ds.userinfo(),
			Host:     ds.addr(5432),
			Path:     "/" + ds.Database,
			RawQuery: ds.query().Encode(),
		}
		return u.String(), nil
	case "sqlserver", "mssql":
		q := ds.query()
		if ds.Database != "" {
			q.Set("database", ds.Database)
		}
		u := url.URL{
			Scheme:   "sqlserver",
			User:     ds.userinfo(),
			Host:     ds.addr(1433),
			RawQuery: q.Encode(),
		}
		return u.String(), nil
	case "sqlite", "sqlite3":
		if ds.Database == "" {
			return "", errs.NewErrArgumentNil("datasource.database")
		}
		dsn := "file:" + ds.Database
		if q := ds.query().Encode(); q != "" {
			dsn += "?" + q
		}
		return dsn, nil
	default:
		return "", errs.NewErrArgument("datasource.driver", "unsupported driver "+ds.Driver)
	}
}

func (ds DataSource) addr(defaultPort int) string {
	host := ds.Host
	if host == "" {
		host = "localhost"
	}
	port := ds.Port
	if port == 0 {
		port = defaultPort
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func (ds DataSource) userinfo() *url.Userinfo {
	if ds.User == "" {
		return nil
	}
	if ds.Password == "" {
		return url.User(ds.User)
	}
	return url.UserPassword(ds.User, ds.Password)
}

func (ds DataSource) query() url.Values {
	q := make(url.Values, len(ds.Params))
	for k, v := range ds.Params {
		q.Set(k, v)
	}
	return q
}
