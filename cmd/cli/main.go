package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"

	"golang.org/x/crypto/bcrypt"

	"github.com/Monchel-Emmy/SmartRent360-backend/internal/domain"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/infrastructure/logger"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/repository"
	"github.com/Monchel-Emmy/SmartRent360-backend/pkg/database"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "auth":
		handleAuth(args)
	case "property":
		handleProperty(args)
	case "request":
		handleRequest(args)
	case "admin":
		handleAdmin(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: smartrent auth <register|login|logout|who>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "register":
		registerUser(args[1:])
	case "login":
		loginUser(args[1:])
	case "logout":
		logoutUser()
	case "who":
		whoAmI()
	default:
		fmt.Printf("unknown auth command: %s\n", subCmd)
	}
}

func handleProperty(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: smartrent property <list|get>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listProperties(args[1:])
	case "get":
		getProperty(args[1:])
	default:
		fmt.Printf("unknown property command: %s\n", subCmd)
	}
}

func handleRequest(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: smartrent request <list>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listRequests(args[1:])
	default:
		fmt.Printf("unknown request command: %s\n", subCmd)
	}
}

func handleAdmin(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: smartrent admin <stats|seed>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "stats":
		showStats(args[1:])
	case "seed":
		seedAdmin(args[1:])
	default:
		fmt.Printf("unknown admin command: %s\n", subCmd)
	}
}

// envelope mirrors the API response shape
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Auth commands
func registerUser(args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "full name")
	phone := fs.String("phone", "", "phone number")
	role := fs.String("role", "TENANT", "role (TENANT, LANDLORD, COMMISSIONER)")
	password := fs.String("password", "", "password")
	nationalID := fs.String("national-id", "", "national ID (optional)")

	fs.Parse(args)

	if *name == "" || *phone == "" || *password == "" {
		fmt.Println("Error: name, phone, and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{
		"name":     *name,
		"phone":    *phone,
		"role":     *role,
		"password": *password,
	}
	if *nationalID != "" {
		payload["nationalId"] = *nationalID
	}

	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/users/register", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result envelope
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ User registered: %s (awaiting admin verification)\n", *phone)
	} else {
		fmt.Printf("✗ Registration failed: %s\n", result.Message)
	}
}

func loginUser(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	phone := fs.String("phone", "", "phone number")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *phone == "" || *password == "" {
		fmt.Println("Error: phone and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"phone": *phone, "password": *password}
	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/users/login", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result envelope
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		var login struct {
			Token string `json:"token"`
		}
		if json.Unmarshal(result.Data, &login) == nil && login.Token != "" {
			saveToken(login.Token)
			fmt.Printf("✓ Logged in as: %s\n", *phone)
		}
	} else {
		fmt.Printf("✗ Login failed: %s\n", result.Message)
	}
}

func logoutUser() {
	os.Remove(tokenFile())
	fmt.Println("✓ Logged out")
}

func whoAmI() {
	token := loadToken()
	if token == "" {
		fmt.Println("Not logged in")
		return
	}
	fmt.Printf("✓ Logged in (token: %s...)\n", tokenPreview(token))
}

// Property commands
func listProperties(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	location := fs.String("location", "", "filter by location")
	propType := fs.String("type", "", "filter by type")
	fs.Parse(args)

	url := getAPIURL() + "/properties?pageSize=50"
	if *location != "" {
		url += "&location=" + *location
	}
	if *propType != "" {
		url += "&type=" + *propType
	}

	req, _ := http.NewRequest("GET", url, nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result envelope
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode != 200 {
		fmt.Printf("✗ %s\n", result.Message)
		return
	}

	var properties []map[string]interface{}
	json.Unmarshal(result.Data, &properties)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tTYPE\tPRICE\tLOCATION\tSTATUS")
	for _, p := range properties {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\t%v\n",
			p["id"], p["title"], p["type"], p["price"], p["location"], p["status"])
	}
	w.Flush()
}

func getProperty(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: smartrent property get <property-id>")
		return
	}

	req, _ := http.NewRequest("GET", getAPIURL()+"/properties/"+args[0], nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result envelope
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode != 200 {
		fmt.Printf("✗ %s\n", result.Message)
		return
	}

	pretty, _ := json.MarshalIndent(json.RawMessage(result.Data), "", "  ")
	fmt.Println(string(pretty))
}

// Request commands
func listRequests(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	status := fs.String("status", "", "filter by status (PENDING, CONNECTED, COMPLETED)")
	fs.Parse(args)

	url := getAPIURL() + "/requests?pageSize=50"
	if *status != "" {
		url += "&status=" + *status
	}

	req, _ := http.NewRequest("GET", url, nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result envelope
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode != 200 {
		fmt.Printf("✗ %s\n", result.Message)
		return
	}

	var requests []map[string]interface{}
	json.Unmarshal(result.Data, &requests)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROPERTY\tSTATUS\tCREATED")
	for _, r := range requests {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\n", r["id"], r["propertyId"], r["status"], r["createdAt"])
	}
	w.Flush()
}

// Admin commands
func showStats(args []string) {
	_ = args
	req, _ := http.NewRequest("GET", getAPIURL()+"/admin/stats", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result envelope
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode != 200 {
		fmt.Printf("✗ %s\n", result.Message)
		return
	}

	pretty, _ := json.MarshalIndent(json.RawMessage(result.Data), "", "  ")
	fmt.Println(string(pretty))
}

// seedAdmin creates a verified ADMIN account directly in the database. The
// ADMIN role is not registrable through the API, so the first admin has to
// be bootstrapped out of band.
func seedAdmin(args []string) {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	name := fs.String("name", "", "admin name")
	phone := fs.String("phone", "", "admin phone number")
	password := fs.String("password", "", "admin password")
	fs.Parse(args)

	if *name == "" || *phone == "" || *password == "" {
		fmt.Println("Error: name, phone, and password are required")
		fs.PrintDefaults()
		return
	}
	if len(*password) < 6 {
		fmt.Println("Error: password must be at least 6 characters")
		return
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Println("Error: DATABASE_URL is required for seeding")
		return
	}

	log := logger.NewLogger("warn")
	ctx := context.Background()

	pool, err := database.NewConnectionPool(ctx, databaseURL, log)
	if err != nil {
		fmt.Printf("✗ Database connection failed: %v\n", err)
		return
	}
	defer pool.Close()

	if err := pool.Migrate(ctx); err != nil {
		fmt.Printf("✗ Schema migration failed: %v\n", err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Printf("✗ Failed to hash password: %v\n", err)
		return
	}

	userRepo := repository.NewPostgresUserRepository(pool.GetDB(), log)
	admin := &domain.User{
		Name:         *name,
		Phone:        *phone,
		Role:         domain.RoleAdmin,
		PasswordHash: string(hash),
		Verified:     true,
	}
	if err := userRepo.Create(admin); err != nil {
		fmt.Printf("✗ Failed to create admin: %v\n", err)
		return
	}

	fmt.Printf("✓ Admin created: %s (%s)\n", *phone, admin.ID)
}

// tokenPreview truncates a token for display. The token file may hold
// fewer than 20 bytes after a truncated write.
func tokenPreview(token string) string {
	if len(token) > 20 {
		return token[:20]
	}
	return token
}

// Helper functions
func getAPIURL() string {
	if url := os.Getenv("SMARTRENT_API"); url != "" {
		return url
	}
	return "http://localhost:8080/api/v1"
}

func tokenFile() string {
	home, _ := os.UserHomeDir()
	return home + "/.smartrent/token"
}

func saveToken(token string) error {
	home, _ := os.UserHomeDir()
	os.MkdirAll(home+"/.smartrent", 0700)
	return os.WriteFile(tokenFile(), []byte(token), 0600)
}

func loadToken() string {
	data, _ := os.ReadFile(tokenFile())
	return string(data)
}

func addAuthHeader(req *http.Request) {
	token := loadToken()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func printUsage() {
	fmt.Print(`SmartRent360 CLI

Usage:
  smartrent <command> [options]

Commands:
  auth      Authentication (register, login, logout, who)
  property  Property listings (list, get)
  request   Rental requests (list)
  admin     Admin operations (stats, seed) - admin access required
  help      Show this help message

Environment Variables:
  SMARTRENT_API   API endpoint (default: http://localhost:8080/api/v1)
  DATABASE_URL    PostgreSQL URL (required for 'admin seed' only)

Examples:
  smartrent auth register -name "Jane Doe" -phone +250788000001 -role LANDLORD -password secret1
  smartrent auth login -phone +250788000001 -password secret1
  smartrent property list -location Kigali
  smartrent admin seed -name Root -phone +250788000000 -password secret1
`)
}
