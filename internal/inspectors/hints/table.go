package hints

// defaultTable is the built-in control-to-keyword table, keyed by
// control id in hint key form. Keywords are indicative terms drawn from
// NIST SP 800-53 control territory; matching is substring-based so
// multi-token API names work across call syntaxes.
var defaultTable = map[string]Entry{
	"sc8": { // Transmission Confidentiality and Integrity
		Generic: []string{
			"ssl", "tls", "https", "starttls", "openssl", "boringssl",
			"cipher_suite", "truststore", "keystore", "dtls",
		},
		ByLanguage: map[string][]string{
			"golang": {"tls.config", "tls.dial", "tls.listen", "crypto/tls", "http.transport.tlsclientconfig"},
			"python": {"sslcontext", "ssl.create_default_context", "ssl.wrap_socket", "grpc.ssl_channel_credentials"},
			"java":   {"sslsocket", "httpsurlconnection", "trustmanagerfactory", "keymanagerfactory"},
			"cpp":    {"ssl_ctx", "ssl_new", "ssl_connect", "ssl_ctx_set_verify", "tls_method"},
		},
	},
	"sc12": { // Cryptographic Key Establishment and Management
		Generic: []string{"key_rotation", "keygen", "key_management", "kms", "hsm"},
		ByLanguage: map[string][]string{
			"golang": {"rsa.generatekey", "ecdsa.generatekey", "x509.createcertificate"},
			"python": {"fernet.generate_key", "rsa.generate_private_key"},
			"java":   {"keypairgenerator", "keygenerator.getinstance"},
			"cpp":    {"evp_pkey_keygen", "rsa_generate_key_ex"},
		},
	},
	"sc13": { // Cryptographic Protection
		Generic: []string{"aes", "rsa", "sha256", "sha-256", "hmac", "chacha20", "encrypt", "decrypt"},
		ByLanguage: map[string][]string{
			"golang": {"crypto/aes", "crypto/rsa", "crypto/hmac", "cipher.newgcm"},
			"python": {"hashlib", "cryptography.fernet", "pycryptodome"},
			"java":   {"javax.crypto", "cipher.getinstance", "messagedigest"},
			"cpp":    {"evp_encryptinit", "evp_digestinit"},
		},
	},
	"sc28": { // Protection of Information at Rest
		Generic: []string{"luks", "disk_encryption", "data_at_rest_encryption", "encrypted_volume"},
		ByLanguage: map[string][]string{
			"golang": {"diskencryption", "dataatrestencryption"},
			"python": {"disk_encryption", "data_at_rest_encryption"},
		},
	},
	"ac3": { // Access Enforcement
		Generic: []string{"rbac", "access_policy", "permission_check", "access_control"},
		ByLanguage: map[string][]string{
			"golang": {"accesspolicy", "permissioncheck", "casbin"},
			"python": {"access_policy", "permission_check"},
			"java":   {"accessdecisionmanager", "preauthorize"},
		},
	},
	"ac6": { // Least Privilege
		Generic: []string{"least_privilege", "privilege_check", "sudo", "setuid", "run_as"},
		ByLanguage: map[string][]string{
			"golang": {"privilegecheck", "dropprivileges", "syscall.setuid"},
			"python": {"os.setuid", "drop_privileges"},
			"java":   {"dopriviledged", "doprivileged"},
		},
	},
	"ac17.2": { // Remote Access - Protection of Confidentiality/Integrity
		Generic: []string{"vpn", "ssh", "remote_access", "wireguard", "ipsec"},
		ByLanguage: map[string][]string{
			"golang": {"golang.org/x/crypto/ssh", "ssh.dial"},
			"python": {"paramiko"},
		},
	},
	"au2": { // Event Logging
		Generic: []string{"audit", "audit_log", "auditlog", "syslog", "event_log", "access_log"},
		ByLanguage: map[string][]string{
			"golang": {"auditlogger", "log/syslog", "zap.", "slog."},
			"python": {"logging.getlogger", "auditlog"},
			"java":   {"log4j", "slf4j", "auditlogger"},
		},
	},
	"ia2": { // Identification and Authentication (Organizational Users)
		Generic: []string{"password_policy", "local_login", "user_authentication", "mfa", "multi_factor"},
		ByLanguage: map[string][]string{
			"golang": {"passwordpolicy", "userauthentication", "totp"},
			"python": {"password_policy", "user_authentication"},
			"java":   {"authenticationmanager", "userdetailsservice"},
		},
	},
	"ia5": { // Authenticator Management
		Generic: []string{"secret", "apikey", "api_key", "credential", "passwd", "vault", "keychain"},
		ByLanguage: map[string][]string{
			"golang": {"os.getenv(\"api_key", "secretsmanager"},
			"python": {"os.environ[\"api_key", "secrets.token"},
		},
	},
	"si10": { // Information Input Validation
		Generic: []string{"input_validation", "sanitize_input", "validate_payload", "schema_validation"},
		ByLanguage: map[string][]string{
			"golang": {"inputvalidation", "sanitizeinput", "validatepayload", "validator.validate"},
			"python": {"input_validation", "sanitize_input", "pydantic"},
			"java":   {"@valid", "constraintvalidator"},
		},
	},
}
