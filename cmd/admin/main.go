package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"complaintdesk/backend/internal/audit"
	"complaintdesk/backend/internal/complaint"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/logging"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/seed"
	"complaintdesk/backend/internal/session"
	"complaintdesk/backend/internal/storage"

	"github.com/apex/log"
	"github.com/joho/godotenv"
)

const usage = `Usage: admin <command> [args]

Commands:
  status <complaint_id> <status>    move a complaint to Pending, "In Progress", "On Hold" or Resolved
  assign <complaint_id> <staff_id>  assign a complaint
  note <complaint_id> <text>        append a note
  proof <complaint_id> <text>       attach resolution proof
  analytics [community_id]          print analytics
  audit [action]                    print the audit log, newest first
  seed [--force]                    write demo data (--force clears storage first)

Credentials are read from ADMIN_EMAIL and ADMIN_PASSWORD.`

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logging.Setup(cfg.LogFormat, cfg.LogLevel, nil)
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	ctx := context.Background()
	kv, err := storage.Open(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to open storage")
	}

	dir := session.NewDirectory(kv)
	sess := session.New(kv, dir, session.NewIssuer(cfg.JWTSecret, cfg.TokenTTL))
	auditLog := audit.NewLog(kv, sess)
	complaints := complaint.NewService(kv, sess, auditLog)

	command := os.Args[1]
	if command == "seed" {
		runSeed(kv, dir)
		return
	}

	if !sess.Restore() {
		if _, err := sess.Login(os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD")); err != nil {
			log.WithError(err).Fatal("login failed; set ADMIN_EMAIL and ADMIN_PASSWORD")
		}
	}
	if !sess.IsStaff(ctx) {
		log.Fatal("the configured account is not staff")
	}

	switch command {
	case "status":
		requireArgs(4, "admin status <complaint_id> <status>")
		printComplaint(complaints.TransitionStatus(ctx, os.Args[2], models.ComplaintStatus(os.Args[3])))
	case "assign":
		requireArgs(4, "admin assign <complaint_id> <staff_id>")
		printComplaint(complaints.Assign(ctx, os.Args[2], os.Args[3]))
	case "note":
		requireArgs(4, "admin note <complaint_id> <text>")
		printComplaint(complaints.AppendNote(ctx, os.Args[2], os.Args[3]))
	case "proof":
		requireArgs(4, "admin proof <complaint_id> <text>")
		printComplaint(complaints.AttachResolutionProof(ctx, os.Args[2], os.Args[3]))
	case "analytics":
		communityID := ""
		if len(os.Args) > 2 {
			communityID = os.Args[2]
		}
		printJSON(complaints.Analytics(communityID))
	case "audit":
		if !sess.IsAdmin(ctx) {
			log.Fatal("the audit log is admin-only")
		}
		f := audit.Filter{}
		if len(os.Args) > 2 {
			f.Action = models.AuditAction(os.Args[2])
		}
		printJSON(auditLog.Query(f))
	default:
		fmt.Println("Unknown command")
		fmt.Println(usage)
		os.Exit(1)
	}
}

func requireArgs(n int, msg string) {
	if len(os.Args) < n {
		fmt.Println("Usage:", msg)
		os.Exit(1)
	}
}

func runSeed(kv storage.KV, dir *session.Directory) {
	if len(os.Args) > 2 && os.Args[2] == "--force" {
		if err := seed.Reset(kv, dir, time.Now()); err != nil {
			log.WithError(err).Fatal("reseed failed")
		}
		fmt.Println("Storage cleared and demo data written.")
		return
	}
	wrote, err := seed.Demo(kv, dir, time.Now())
	if err != nil {
		log.WithError(err).Fatal("seed failed")
	}
	if !wrote {
		fmt.Println("Demo data already present; use --force to reset.")
		return
	}
	fmt.Println("Demo data written.")
}

func printComplaint(c models.Complaint, err error) {
	if err != nil {
		log.WithError(err).Fatal("command failed")
	}
	printJSON(complaint.Display(c))
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.WithError(err).Fatal("could not encode output")
	}
}
