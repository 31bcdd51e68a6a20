package main

import (
	"encoding/json"
	"errors"

	"voice-console/internal/gateway"
	"voice-console/pkg/models"

	"github.com/spf13/cobra"
)

var campaignCmd = &cobra.Command{
	Use:   "campaign",
	Short: "Place calls",
}

var (
	campaignAgent  string
	campaignPhone  string
	campaignList   string
	campaignGender string
)

var campaignInitiateCmd = &cobra.Command{
	Use:   "initiate",
	Short: "Call one number or every contact of a list",
	RunE:  runCampaignInitiate,
}

var campaignStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a backend-driven campaign over a list",
	RunE: func(cmd *cobra.Command, args []string) error {
		if campaignList == "" || campaignAgent == "" {
			return errors.New("--list and --agent are required")
		}
		a, err := getApp()
		if err != nil {
			return err
		}
		s, err := a.currentSession(cmd.Context())
		if err != nil {
			return err
		}
		out, err := a.client.For(s).StartCampaign(cmd.Context(), models.StartCampaignRequest{ListID: campaignList, AgentID: campaignAgent})
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), rawOrNull(out))
	},
}

var (
	historyPage  int
	historyLimit int
	historyAll   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show a page of call history",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}
		s, err := a.currentSession(cmd.Context())
		if err != nil {
			return err
		}
		gw := a.client.For(s)
		if historyAll {
			if _, err := a.roles.Require(cmd.Context(), gateway.TokenOf(s), gw, models.RoleSuperAdmin); err != nil {
				return err
			}
		}
		page, err := gw.History(cmd.Context(), historyPage, historyLimit, historyAll)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), page)
	},
}

func init() {
	for _, c := range []*cobra.Command{campaignInitiateCmd, campaignStartCmd} {
		c.Flags().StringVar(&campaignAgent, "agent", "", "agent id")
		c.Flags().StringVar(&campaignList, "list", "", "contact list id")
	}
	campaignInitiateCmd.Flags().StringVar(&campaignPhone, "phone", "", "single phone number to call")
	campaignInitiateCmd.Flags().StringVar(&campaignGender, "gender", "", "voice gender (male or female)")
	campaignCmd.AddCommand(campaignInitiateCmd, campaignStartCmd)

	historyCmd.Flags().IntVar(&historyPage, "page", 1, "page number")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "entries per page")
	historyCmd.Flags().BoolVar(&historyAll, "all", false, "every tenant's calls (super admin)")
}

func runCampaignInitiate(cmd *cobra.Command, args []string) error {
	if campaignAgent == "" {
		return errors.New("--agent is required")
	}
	if campaignPhone == "" && campaignList == "" {
		return errors.New("--phone or --list is required")
	}
	if campaignGender != "" && campaignGender != "male" && campaignGender != "female" {
		return errors.New("--gender must be male or female")
	}
	a, err := getApp()
	if err != nil {
		return err
	}
	s, err := a.currentSession(cmd.Context())
	if err != nil {
		return err
	}
	gw := a.client.For(s)

	req := models.InitiateCallRequest{
		PhoneNumber: campaignPhone,
		AgentID:     campaignAgent,
		TenantID:    tenantOf(s),
		Gender:      campaignGender,
	}
	if campaignPhone == "" {
		contacts, err := gw.Contacts(cmd.Context(), campaignList)
		if err != nil {
			return err
		}
		for _, ct := range contacts {
			if ct.Phone != "" {
				req.Recipients = append(req.Recipients, ct.Phone)
			}
		}
		if len(req.Recipients) == 0 {
			return errors.New("list has no contacts with a phone number")
		}
	}
	out, err := gw.InitiateCalls(cmd.Context(), req)
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), map[string]interface{}{"queued": max(len(req.Recipients), 1), "result": rawOrNull(out)})
}

func rawOrNull(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || !json.Valid(raw) {
		return json.RawMessage("null")
	}
	return raw
}
