package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/kazitrust/kazitrust/pkg/config"
)

func writeConfig(dir, data string) {
	Expect(os.WriteFile(filepath.Join(dir, "config.toml"), []byte(data), 0o600)).To(Succeed())
}

var _ = Describe("Configer config", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	Describe("LoadConfig", func() {
		It("returns default config when no config file exists", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg).To(Equal(config.NewDefaultConfig()))
		})

		It("overrides defaults with values from the file", func() {
			writeConfig(tmpDir, `version = 0

[server]
listen = "127.0.0.1:9000"
mcp = false

[gemini]
voice = "Puck"

[media]
max_upload_bytes = 1048576
`)

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())

			defaults := config.NewDefaultConfig()
			Expect(cfg.Server.Listen).To(Equal("127.0.0.1:9000"))
			Expect(cfg.Server.MCP).To(BeFalse())
			Expect(cfg.Server.SessionTTL).To(Equal(defaults.Server.SessionTTL))
			Expect(cfg.Gemini.Voice).To(Equal("Puck"))
			Expect(cfg.Gemini.ChatModel).To(Equal(defaults.Gemini.ChatModel))
			Expect(cfg.Media.MaxUploadBytes).To(Equal(int64(1048576)))
		})

		It("keeps mcp enabled when the file omits it", func() {
			writeConfig(tmpDir, "[server]\nlisten = \":9999\"\n")

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Server.MCP).To(BeTrue())
		})

		It("fills explicitly empty values with defaults", func() {
			writeConfig(tmpDir, "[gemini]\nbase_url = \"\"\n")

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Gemini.BaseURL).To(Equal(config.NewDefaultConfig().Gemini.BaseURL))
		})

		It("returns error for malformed TOML", func() {
			writeConfig(tmpDir, "[server\nlisten =")

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			_, err = c.LoadConfig()
			Expect(err).To(MatchError(ContainSubstring("parsing config TOML")))
		})

		It("returns error for unsupported config version", func() {
			writeConfig(tmpDir, "version = 7\n")

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			_, err = c.LoadConfig()
			Expect(err).To(MatchError(ContainSubstring("unsupported config version 7")))
		})
	})

	Describe("SetConfigValue and GetConfigValue", func() {
		var c *config.Configer

		BeforeEach(func() {
			var err error
			c, err = config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
		})

		It("round-trips a string key through the file", func() {
			Expect(c.SetConfigValue("gemini.chat_model", "gemini-2.5-pro")).To(Succeed())

			val, err := c.GetConfigValue("gemini.chat_model")
			Expect(err).NotTo(HaveOccurred())
			Expect(val).To(Equal("gemini-2.5-pro"))

			data, err := os.ReadFile(filepath.Join(tmpDir, "config.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`chat_model = "gemini-2.5-pro"`))
		})

		It("preserves existing values when setting a new key", func() {
			Expect(c.SetConfigValue("server.listen", ":7000")).To(Succeed())
			Expect(c.SetConfigValue("speech.player", "paplay")).To(Succeed())

			listen, err := c.GetConfigValue("server.listen")
			Expect(err).NotTo(HaveOccurred())
			Expect(listen).To(Equal(":7000"))
		})

		It("validates typed keys", func() {
			Expect(c.SetConfigValue("server.mcp", "maybe")).To(MatchError(ContainSubstring("server.mcp")))
			Expect(c.SetConfigValue("server.session_ttl", "soon")).To(MatchError(ContainSubstring("server.session_ttl")))
			Expect(c.SetConfigValue("media.max_upload_bytes", "-1")).To(MatchError(ContainSubstring("positive integer")))

			Expect(c.SetConfigValue("server.mcp", "false")).To(Succeed())
			val, err := c.GetConfigValue("server.mcp")
			Expect(err).NotTo(HaveOccurred())
			Expect(val).To(Equal("false"))
		})

		It("returns defaults when no file exists", func() {
			val, err := c.GetConfigValue("gemini.voice")
			Expect(err).NotTo(HaveOccurred())
			Expect(val).To(Equal("Kore"))

			val, err = c.GetConfigValue("speech.player")
			Expect(err).NotTo(HaveOccurred())
			Expect(val).To(BeEmpty())
		})

		It("rejects unknown keys", func() {
			Expect(c.SetConfigValue("gemini.api_key", "secret")).To(MatchError(ContainSubstring("unknown config key")))
			_, err := c.GetConfigValue("proxy.listen")
			Expect(err).To(MatchError(ContainSubstring("unknown config key")))
		})
	})

	Describe("SaveConfig", func() {
		It("returns error for nil config", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.SaveConfig(nil)).To(MatchError("cannot save nil config"))
		})
	})
})

var _ = Describe("ValidConfigKeys", func() {
	It("lists every key in section order", func() {
		keys := config.ValidConfigKeys()
		Expect(keys).To(HaveLen(12))
		Expect(keys[0]).To(Equal("server.listen"))
		Expect(keys[len(keys)-1]).To(Equal("speech.player"))
		for _, k := range keys {
			Expect(config.IsValidConfigKey(k)).To(BeTrue())
		}
	})

	It("never exposes the API key", func() {
		Expect(config.ValidConfigKeys()).NotTo(ContainElement(ContainSubstring("key")))
	})
})

var _ = Describe("NewDefaultConfig", func() {
	It("returns fully-populated defaults", func() {
		cfg := config.NewDefaultConfig()
		Expect(cfg.Server.Listen).To(Equal(":8080"))
		Expect(cfg.Server.SessionTTL).To(Equal("30m"))
		Expect(cfg.Server.MCP).To(BeTrue())
		Expect(cfg.Gemini.BaseURL).To(Equal("https://generativelanguage.googleapis.com"))
		Expect(cfg.Gemini.SpeechModel).To(Equal("gemini-2.5-flash-preview-tts"))
		Expect(cfg.Gemini.TranslateModel).To(Equal("gemini-flash-lite-latest"))
		Expect(cfg.Gemini.SearchModel).To(Equal("gemini-3-flash-preview"))
		Expect(cfg.Media.MaxUploadBytes).To(Equal(int64(20 << 20)))
	})
})

var _ = Describe("InitViper", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	It("returns viper with defaults when no config file exists", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("server.listen")).To(Equal(":8080"))
		Expect(v.GetBool("server.mcp")).To(BeTrue())
		Expect(config.SessionTTL(v)).To(Equal(30 * time.Minute))
	})

	It("reads config file values over defaults", func() {
		writeConfig(tmpDir, "[server]\nsession_ttl = \"5m\"\n")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(config.SessionTTL(v)).To(Equal(5 * time.Minute))
	})

	It("env vars take precedence over config file values", func() {
		writeConfig(tmpDir, "[gemini]\nvoice = \"Puck\"\n")
		GinkgoT().Setenv("KAZITRUST_GEMINI_VOICE", "Charon")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("gemini.voice")).To(Equal("Charon"))
	})

	It("falls back to the default TTL for an invalid value", func() {
		GinkgoT().Setenv("KAZITRUST_SERVER_SESSION_TTL", "forever")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(config.SessionTTL(v)).To(Equal(30 * time.Minute))
	})
})

var _ = Describe("BindRegisteredFlags", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	It("lets a set flag win over the config file", func() {
		writeConfig(tmpDir, "[server]\nlisten = \":5555\"\n")
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		var listen string
		config.AddStringFlag(cmd, config.Flags, config.FlagListen, &listen)
		Expect(cmd.Flags().Set("listen", ":7777")).To(Succeed())

		config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagListen})
		Expect(v.GetString("server.listen")).To(Equal(":7777"))
	})

	It("falls through to config when the flag is not set", func() {
		writeConfig(tmpDir, "[media]\nmax_upload_bytes = 4096\n")
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		var limit int64
		config.AddInt64Flag(cmd, config.Flags, config.FlagMaxUpload, &limit)

		config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagMaxUpload})
		Expect(v.GetInt64("media.max_upload_bytes")).To(Equal(int64(4096)))
	})

	It("takes names, shorthands and defaults from the registry", func() {
		cmd := &cobra.Command{Use: "test"}
		var listen string
		var mcp bool
		config.AddStringFlag(cmd, config.Flags, config.FlagListen, &listen)
		config.AddBoolFlag(cmd, config.Flags, config.FlagMCP, &mcp)

		f := cmd.Flags().Lookup("listen")
		Expect(f.Shorthand).To(Equal("l"))
		Expect(f.DefValue).To(Equal(":8080"))
		Expect(cmd.Flags().Lookup("mcp").DefValue).To(Equal("true"))
	})

	It("skips unknown registry keys", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		config.BindRegisteredFlags(v, cmd, config.Flags, []string{"nonexistent"})
		Expect(v.GetString("server.listen")).To(Equal(":8080"))
	})
})

var _ = Describe("Credentials", func() {
	It("prefers GEMINI_API_KEY over API_KEY", func() {
		GinkgoT().Setenv(config.EnvAPIKey, "primary")
		GinkgoT().Setenv(config.EnvAPIKeyFallback, "fallback")
		Expect(config.APIKey()).To(Equal("primary"))
	})

	It("falls back to API_KEY", func() {
		GinkgoT().Setenv(config.EnvAPIKey, "")
		GinkgoT().Setenv(config.EnvAPIKeyFallback, "fallback")
		Expect(config.APIKey()).To(Equal("fallback"))
	})

	It("loads a .env file from the config directory without overriding the environment", func() {
		dir := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, ".env"), []byte("GEMINI_API_KEY=from-dotenv\nAPI_KEY=also\n"), 0o600)).To(Succeed())
		GinkgoT().Setenv(config.EnvAPIKey, "")
		GinkgoT().Setenv(config.EnvAPIKeyFallback, "already-set")

		Expect(config.LoadDotEnv(dir)).To(Succeed())
		Expect(os.Getenv(config.EnvAPIKeyFallback)).To(Equal("already-set"))
	})
})
